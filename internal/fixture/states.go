package fixture

// StateRegion is one row of the Brazilian state reference table.
type StateRegion struct {
	Code         string
	Name         string
	Region       string
	EconomicZone string
}

// BrazilStates lists the 26 states and the Federal District with their IBGE
// region and geoeconomic zone.
var BrazilStates = []StateRegion{
	{"AC", "Acre", "Norte", "Amazônia Legal"},
	{"AL", "Alagoas", "Nordeste", "Nordeste"},
	{"AM", "Amazonas", "Norte", "Amazônia Legal"},
	{"AP", "Amapá", "Norte", "Amazônia Legal"},
	{"BA", "Bahia", "Nordeste", "Nordeste"},
	{"CE", "Ceará", "Nordeste", "Nordeste"},
	{"DF", "Distrito Federal", "Centro-Oeste", "Centro-Sul"},
	{"ES", "Espírito Santo", "Sudeste", "Centro-Sul"},
	{"GO", "Goiás", "Centro-Oeste", "Centro-Sul"},
	{"MA", "Maranhão", "Nordeste", "Amazônia Legal"},
	{"MG", "Minas Gerais", "Sudeste", "Centro-Sul"},
	{"MS", "Mato Grosso do Sul", "Centro-Oeste", "Centro-Sul"},
	{"MT", "Mato Grosso", "Centro-Oeste", "Amazônia Legal"},
	{"PA", "Pará", "Norte", "Amazônia Legal"},
	{"PB", "Paraíba", "Nordeste", "Nordeste"},
	{"PE", "Pernambuco", "Nordeste", "Nordeste"},
	{"PI", "Piauí", "Nordeste", "Nordeste"},
	{"PR", "Paraná", "Sul", "Centro-Sul"},
	{"RJ", "Rio de Janeiro", "Sudeste", "Centro-Sul"},
	{"RN", "Rio Grande do Norte", "Nordeste", "Nordeste"},
	{"RO", "Rondônia", "Norte", "Amazônia Legal"},
	{"RR", "Roraima", "Norte", "Amazônia Legal"},
	{"RS", "Rio Grande do Sul", "Sul", "Centro-Sul"},
	{"SC", "Santa Catarina", "Sul", "Centro-Sul"},
	{"SE", "Sergipe", "Nordeste", "Nordeste"},
	{"SP", "São Paulo", "Sudeste", "Centro-Sul"},
	{"TO", "Tocantins", "Norte", "Amazônia Legal"},
}

// categories pairs Portuguese category names with their English
// translation. An empty translation marks a category the translation table
// leaves out, as the public extract does.
var categories = [][2]string{
	{"beleza_saude", "health_beauty"},
	{"cama_mesa_banho", "bed_bath_table"},
	{"esporte_lazer", "sports_leisure"},
	{"informatica_acessorios", "computers_accessories"},
	{"moveis_decoracao", "furniture_decor"},
	{"utilidades_domesticas", "housewares"},
	{"relogios_presentes", "watches_gifts"},
	{"telefonia", "telephony"},
	{"brinquedos", "toys"},
	{"automotivo", "auto"},
	{"pc_gamer", ""},
	{"portateis_cozinha_e_preparadores_de_alimentos", ""},
}

// busyStates weights customer and seller states toward the south-east, the
// shape of the real marketplace.
var busyStates = []string{"SP", "SP", "SP", "SP", "RJ", "RJ", "MG", "MG", "PR", "RS", "SC", "BA"}
