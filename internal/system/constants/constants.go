package constants

const ApiBasePath = "/api/v1"
const RulesApiPath = "reglas"
const TenantLinksApiPath = "reglas-globales"
const ApplyApiPath = "rules-engine/apply"

type ContextKey string

// TenantContextKey carries the tenant resolved from the /t/{tenant} path
// prefix through the request context.
const TenantContextKey ContextKey = "tenantID"

const DefaultTenant = "empresa-demo"

// Reference tables the lookup store is allowed to query. Dynamic table names
// coming from rule configurations are checked against this set before any SQL
// is built.
var AllowedLookupTables = map[string]bool{
	"parametros_maestros":   true,
	"user_tarjetas_credito": true,
	"usuarios":              true,
	"user_atributos":        true,
	"valores_atributo":      true,
	"atributos":             true,
	"banco_tipo_tarjeta":    true,
	"proveedores":           true,
	"cuentas_contables":     true,
}
