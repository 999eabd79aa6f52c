package catcommon

// ServerVersion is the rigsrv release reported by /version.
const ServerVersion = "0.1.0"

// ApiVersion is the wire API version.
const ApiVersion = "0.1.0"
