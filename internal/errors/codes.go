package errors

// Generic error code definitions used as sensible defaults across modules.
const (
	CodeSystemGeneric     = "SYS-000"
	CodeNetworkGeneric    = "NET-000"
	CodeConfigGeneric     = "CFG-000"
	CodeValidationGeneric = "VAL-000"
	CodeDependencyGeneric = "DEP-000"
	CodeSSLGeneric        = "SSL-000"
	CodeFirewallGeneric   = "FW-000"
	CodeDatabaseGeneric   = "DB-000"
	CodeServiceGeneric    = "SVC-000"
	CodeBackupGeneric     = "BAK-000"
)
