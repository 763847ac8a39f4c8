package geo

// Coordinates of German cities, dense around the Ruhr area where most of the
// monitored commuting distances live. Keys are lowercase and matched by
// substring against free-text job locations.
var cityCoordinates = map[string][2]float64{
	"essen":  {51.4556, 7.0116},
	"berlin": {52.5200, 13.4050},

	"düsseldorf":          {51.2277, 6.7735},
	"duisburg":            {51.4344, 6.7623},
	"mülheim":             {51.4267, 6.8833},
	"mülheim an der ruhr": {51.4267, 6.8833},
	"oberhausen":          {51.4963, 6.8516},
	"neuss":               {51.1979, 6.6906},
	"bochum":              {51.4818, 7.2162},
	"wuppertal":           {51.2562, 7.1508},
	"gelsenkirchen":       {51.5177, 7.0857},
	"bottrop":             {51.5216, 6.9289},
	"herne":               {51.5386, 7.2256},
	"recklinghausen":      {51.6142, 7.1963},
	"dorsten":             {51.6563, 6.9663},
	"gladbeck":            {51.5739, 6.9858},
	"marl":                {51.6581, 7.0911},
	"herten":              {51.5945, 7.1340},
	"castrop-rauxel":      {51.5547, 7.3072},
	"datteln":             {51.6456, 7.3397},
	"haltern am see":      {51.7457, 7.1829},
	"erkrath":             {51.2240, 6.9074},
	"ratingen":            {51.2989, 6.8503},
	"heiligenhaus":        {51.3228, 6.9697},
	"velbert":             {51.3394, 7.0457},
	"mettmann":            {51.2541, 6.9750},
	"moers":               {51.4508, 6.6407},
	"krefeld":             {51.3388, 6.5853},
	"kamp-lintfort":       {51.4956, 6.5395},
	"rheinberg":           {51.5441, 6.5959},
	"wesel":               {51.6584, 6.6200},
	"voerde":              {51.5969, 6.6944},
	"dinslaken":           {51.5633, 6.7394},
	"xanten":              {51.6619, 6.4453},
	"kleve":               {51.7890, 6.1384},

	"köln":              {50.9375, 6.9603},
	"cologne":           {50.9375, 6.9603},
	"bonn":              {50.7374, 7.0982},
	"aachen":            {50.7753, 6.0839},
	"münster":           {51.9607, 7.6261},
	"dortmund":          {51.5136, 7.4653},
	"hamburg":           {53.5511, 9.9937},
	"münchen":           {48.1351, 11.5820},
	"munich":            {48.1351, 11.5820},
	"stuttgart":         {48.7758, 9.1829},
	"frankfurt":         {50.1109, 8.6821},
	"bremen":            {53.0793, 8.8017},
	"leipzig":           {51.3397, 12.3731},
	"dresden":           {51.0504, 13.7373},
	"hannover":          {52.3759, 9.7320},
	"nürnberg":          {49.4521, 11.0767},
	"nuremberg":         {49.4521, 11.0767},
	"karlsruhe":         {49.0069, 8.4037},
	"mannheim":          {49.4875, 8.4660},
	"wiesbaden":         {50.0782, 8.2398},
	"bielefeld":         {52.0302, 8.5325},
	"kassel":            {51.3127, 9.4797},
	"hagen":             {51.3670, 7.4637},
	"hamm":              {51.6806, 7.8142},
	"leverkusen":        {51.0353, 6.9804},
	"solingen":          {51.1651, 7.0679},
	"remscheid":         {51.1790, 7.1937},
	"osnabrück":         {52.2799, 8.0472},
	"paderborn":         {51.7189, 8.7545},
	"siegen":            {50.8749, 8.0237},
	"heidelberg":        {49.3988, 8.6724},
	"darmstadt":         {49.8728, 8.6512},
	"mainz":             {49.9929, 8.2473},
	"saarbrücken":       {49.2401, 6.9969},
	"freiburg":          {47.9990, 7.8421},
	"augsburg":          {48.3705, 10.8978},
	"regensburg":        {49.0134, 12.1016},
	"würzburg":          {49.7913, 9.9534},
	"erfurt":            {50.9787, 11.0328},
	"kiel":              {54.3233, 10.1228},
	"rostock":           {54.0887, 12.1288},
	"magdeburg":         {52.1205, 11.6276},
	"potsdam":           {52.3906, 13.0645},
	"braunschweig":      {52.2689, 10.5268},
	"bergisch gladbach": {50.9924, 7.1287},
	"koblenz":           {50.3569, 7.5890},
	"trier":             {49.7490, 6.6371},
	"ulm":               {48.3984, 9.9916},
}

// Aliases resolving partial spellings to the canonical table key.
var cityAliases = map[string]string{
	"bergisch": "bergisch gladbach",
	"gladbach": "bergisch gladbach",
}

// LookupCity resolves a free-text location to coordinates by longest
// matching city name.
func LookupCity(location string) (lat, lon float64, ok bool) {
	lowered := normalize(location)
	if lowered == "" {
		return 0, 0, false
	}

	bestLen := 0
	var best [2]float64
	for name, coords := range cityCoordinates {
		if len(name) > bestLen && containsCity(lowered, name) {
			bestLen = len(name)
			best = coords
		}
	}
	if bestLen > 0 {
		return best[0], best[1], true
	}

	for alias, canonical := range cityAliases {
		if containsCity(lowered, alias) {
			coords := cityCoordinates[canonical]
			return coords[0], coords[1], true
		}
	}
	return 0, 0, false
}
