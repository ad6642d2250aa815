package database

const (
	DriverBolt     = "bolt"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	// bolt keeps everything in one file; sqlite and postgres only hold result
	// batches, users and the inbox stay in bolt.
	Driver   string `envconfig:"DRIVER" default:"bolt"`
	FilePath string `envconfig:"FILE_PATH" default:"wordlebot.db"`
	DSN      string `envconfig:"DSN"`
}
