package ingest

func init() {
	for _, p := range builtinProfiles {
		if err := RegisterProfile(p); err != nil {
			panic(err)
		}
	}
}

var builtinProfiles = []SourceProfile{
	{
		// CORGIS historical NUFORC export. Dates arrive as separate
		// year/month/day/hour/minute columns; some headers carry trailing
		// spaces, which candidate matching tolerates.
		Name:           "NUFORC",
		Kind:           SourceKindCSV,
		DialectHint:    "nuforc",
		DefaultCountry: "USA",
		Fields: map[string][]string{
			FieldDescription: {"Data.Description excerpt", "summary", "description", "text"},
			FieldDate:        {"date_time", "datetime", "date", "event_date"},
			FieldDateYear:    {"Dates.Sighted.Year"},
			FieldDateMonth:   {"Dates.Sighted.Month"},
			FieldDateDay:     {"Date.Sighted.Day", "Dates.Sighted.Day"},
			FieldDateHour:    {"Dates.Sighted.Hour"},
			FieldDateMinute:  {"Dates.Sighted.Minute"},
			FieldCity:        {"Location.City", "city"},
			FieldState:       {"Location.State", "state"},
			FieldCountry:     {"Location.Country", "country"},
			FieldShape:       {"Data.Shape", "shape"},
			FieldDuration:    {"Data.Encounter duration", "duration"},
			FieldLatitude:    {"Location.Coordinates.Latitude", "latitude", "city_latitude"},
			FieldLongitude:   {"Location.Coordinates.Longitude", "longitude", "city_longitude"},
			FieldOriginalID:  {"report_id", "id"},
		},
	},
	{
		// GEIPAN public case export (pipe-delimited, Latin-1) and its
		// data.gouv mirror (semicolon CSV or JSON with French column names).
		Name:           "GEIPAN",
		Kind:           SourceKindCSV,
		Encoding:       EncodingLatin1,
		DialectHint:    "geipan",
		DefaultCountry: "France",
		Fields: map[string][]string{
			FieldDescription: {"RESUME", "Résumé", "summary", "description"},
			FieldDate:        {"DATE_OBS", "DATE", "Date d'observation", "date"},
			FieldCity:        {"LIEU", "Lieu", "ville", "commune"},
			FieldState:       {"DEPARTEMENT", "departement", "REGION", "region"},
			FieldCountry:     {"PAYS", "pays"},
			FieldShape:       {"FORME", "forme"},
			FieldDuration:    {"DUREE", "duree"},
			FieldLatitude:    {"LATITUDE", "Latitude", "lat"},
			FieldLongitude:   {"LONGITUDE", "Longitude", "lon", "lng"},
			FieldOriginalID:  {"NUMERO", "numero", "id_cas", "case_id"},
		},
	},
	{
		// data.world MUFON mirror: headerless comma CSV with a fixed column
		// order, addressed positionally.
		Name:        "MUFON",
		Kind:        SourceKindCSV,
		Headerless:  true,
		DialectHint: "mufon",
		Fields: map[string][]string{
			FieldDate:        {"col_0"},
			FieldCity:        {"col_1"},
			FieldCountry:     {"col_2"},
			FieldShape:       {"col_4"},
			FieldDuration:    {"col_5"},
			FieldDescription: {"col_6"},
			FieldLatitude:    {"col_7"},
			FieldLongitude:   {"col_8"},
		},
	},
	{
		// Hand-submitted reports posted through the API.
		Name: "USER",
		Kind: SourceKindJSON,
		Fields: map[string][]string{
			FieldDescription: {"description", "summary", "text"},
			FieldDate:        {"date_event", "date", "datetime"},
			FieldCity:        {"city", "place"},
			FieldState:       {"state", "region"},
			FieldCountry:     {"country"},
			FieldShape:       {"shape"},
			FieldDuration:    {"duration"},
			FieldLatitude:    {"latitude", "lat"},
			FieldLongitude:   {"longitude", "lon", "lng"},
			FieldOriginalID:  {"id", "report_id"},
		},
	},
}
