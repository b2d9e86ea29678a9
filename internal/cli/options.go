package cli

// Store backends selectable with --store.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
)

// StoreOptions selects where results are persisted.
type StoreOptions struct {
	Kind string
	// Path is the run directory for the file store or the database file for SQLite.
	// Empty uses the backend default under .cohort/.
	Path      string
	RedisAddr string
	RedisDB   int
	// DistributedLock guards run IDs across processes (redis only).
	DistributedLock bool
}

// RunOptions holds the configuration for a single simulation.
type RunOptions struct {
	ModelPath  string
	LogLevel   string
	RunID      string
	Seed       int64
	Seeded     bool
	Parameters map[string]float64
	TraceCSV   string
	JSON       bool
	Quiet      bool
	Store      StoreOptions
}

// BatchOptions holds the configuration for a batch (run or PSA).
type BatchOptions struct {
	ModelPath  string
	ConfigPath string
	LogLevel   string
	Prefix     string
	// Iterations and Workers override the config file when positive.
	Iterations int
	Workers    int
	JSON       bool
	Quiet      bool
	Store      StoreOptions
}

// ServeOptions holds the configuration for the HTTP server.
type ServeOptions struct {
	ModelDir string
	Addr     string
	LogLevel string
	Metrics  bool
	Store    StoreOptions
}
