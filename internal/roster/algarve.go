package roster

// Algarve municipality populations, 2021 census (INE Portugal).
var algarvePopulations = map[string]int{
	"Albufeira":                  42388,
	"Aljezur":                    5347,
	"Castro Marim":               6747,
	"Faro":                       64560,
	"Lagoa":                      23676,
	"Lagos":                      31049,
	"Loulé":                      72162,
	"Monchique":                  5958,
	"Olhão":                      45396,
	"Portimão":                   59896,
	"São Brás De Alportel":       11381,
	"Silves":                     37126,
	"Tavira":                     26167,
	"Vila Do Bispo":              5717,
	"Vila Real De Santo António": 19156,
}

// Algarve municipality reference centers.
var algarveCenters = map[string]Center{
	"Albufeira":                  {Lat: 37.0885, Lng: -8.2475},
	"Aljezur":                    {Lat: 37.3183, Lng: -8.8042},
	"Castro Marim":               {Lat: 37.2169, Lng: -7.4472},
	"Faro":                       {Lat: 37.0194, Lng: -7.9322},
	"Lagoa":                      {Lat: 37.1333, Lng: -8.4500},
	"Lagos":                      {Lat: 37.1028, Lng: -8.6732},
	"Loulé":                      {Lat: 37.1376, Lng: -8.0222},
	"Monchique":                  {Lat: 37.3167, Lng: -8.5556},
	"Olhão":                      {Lat: 37.0267, Lng: -7.8411},
	"Portimão":                   {Lat: 37.1391, Lng: -8.5372},
	"São Brás De Alportel":       {Lat: 37.1525, Lng: -7.8836},
	"Silves":                     {Lat: 37.1875, Lng: -8.4383},
	"Tavira":                     {Lat: 37.1267, Lng: -7.6486},
	"Vila Do Bispo":              {Lat: 37.0833, Lng: -8.9122},
	"Vila Real De Santo António": {Lat: 37.1961, Lng: -7.4167},
}

// Algarve returns the default roster of the 15 Algarve municipalities.
func Algarve() *Roster {
	r, err := New(algarvePopulations, algarveCenters)
	if err != nil {
		// The tables above are static and validated by tests.
		panic(err)
	}
	return r
}
