package config

func NewRepositoryForTest(backend, sqlitePath string) *Repository {
	return &Repository{backend: backend, sqlitePath: sqlitePath}
}

func NewLoggerForTest(level, format, output string) *Logger {
	return &Logger{level: level, format: format, output: output}
}

func NewSentryForTest(dsn, env string) *Sentry {
	return &Sentry{dsn: dsn, env: env}
}
