package sqldb

// Bind is exported for testing placeholder rewriting
var Bind = bind
