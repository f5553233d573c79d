package ocigo

import (
	"context"
	"database/sql"
	"database/sql/driver"

	"github.com/go-ocilib/ocigo/internal/strbridge"
)

func init() {
	sql.Register("ocigo", &Driver{})
}

// Driver implements database/sql/driver.Driver. The name passed to
// Open/OpenConnector is an Oracle connection string of the form
// "user/password@host:port/service_name", optionally followed by
// "?key=value" options (mode=sysdba|sysoper|xa, charset=wide|ansi,
// lib_path=/path/to/libclntsh.so, session_tag=..., query_timeout=seconds).
type Driver struct{}

// Open opens a single connection to the database.
func (d *Driver) Open(name string) (driver.Conn, error) {
	connector, err := d.OpenConnector(name)
	if err != nil {
		return nil, err
	}
	return connector.Connect(context.Background())
}

// OpenConnector returns a Connector for name, implementing
// driver.DriverContext so database/sql can pool connections efficiently.
func (d *Driver) OpenConnector(name string) (driver.Connector, error) {
	cfg, err := parseDSN(name)
	if err != nil {
		return nil, err
	}
	envMode := strbridge.ANSI
	if cfg.charset != "ansi" {
		envMode = strbridge.Wide
	}
	e, err := OpenEnvironment(cfg.libPath, envMode)
	if err != nil {
		return nil, err
	}
	return &Connector{dsn: cfg, driver: d, env: e}, nil
}

var (
	_ driver.Driver        = (*Driver)(nil)
	_ driver.DriverContext = (*Driver)(nil)
)
