package ocigo

import (
	"context"
	"database/sql/driver"
	"strconv"
	"strings"
	"time"

	"github.com/go-ocilib/ocigo/internal/memstat"
	"github.com/go-ocilib/ocigo/internal/oci"
)

// dsnConfig is the parsed form of a connection string
// "user/password@host:port/service_name?key=value&...".
type dsnConfig struct {
	user, password, connectString string
	mode                          SessionMode
	charset                       string // "wide" (default) or "ansi"
	libPath                       string
	sessionTag                    string
	queryTimeout                  time.Duration
}

// parseDSN parses the driver's connection string format. Grounded on the
// teacher's DriverConnect-based DSN (a flat "key=value;..." string); this
// driver instead follows Oracle client tooling's familiar
// "user/password@connect_string" shape, since that is the format every
// Oracle-facing consumer already expects (spec §1's Non-goals exclude a
// bespoke connection-string grammar beyond what operations require).
func parseDSN(name string) (*dsnConfig, error) {
	cfg := &dsnConfig{mode: SessionNormal, charset: "wide"}

	main, query, _ := strings.Cut(name, "?")

	at := strings.LastIndex(main, "@")
	if at < 0 {
		return nil, newError(KindArgumentInvalidValue, "parseDSN", "connection string missing '@connect_string'")
	}
	cfg.connectString = main[at+1:]
	cred := main[:at]
	if slash := strings.Index(cred, "/"); slash >= 0 {
		cfg.user = cred[:slash]
		cfg.password = cred[slash+1:]
	} else {
		cfg.user = cred
	}

	for _, kv := range strings.Split(query, "&") {
		if kv == "" {
			continue
		}
		k, v, _ := strings.Cut(kv, "=")
		switch strings.ToLower(k) {
		case "mode":
			switch strings.ToLower(v) {
			case "sysdba":
				cfg.mode = SessionSysDBA
			case "sysoper":
				cfg.mode = SessionSysOper
			case "xa":
				cfg.mode = SessionXA
			}
		case "charset":
			cfg.charset = strings.ToLower(v)
		case "lib_path":
			cfg.libPath = v
		case "session_tag":
			cfg.sessionTag = v
		case "query_timeout":
			if secs, err := strconv.Atoi(v); err == nil {
				cfg.queryTimeout = time.Duration(secs) * time.Second
			}
		}
	}

	return cfg, nil
}

// Connector implements driver.Connector, caching the parsed DSN and the
// shared Environment so repeated Connect calls (database/sql's pool)
// avoid re-parsing and re-attaching the environment singleton.
type Connector struct {
	dsn    *dsnConfig
	driver *Driver
	env    *Environment
}

// Connect attaches to the server and begins a session, per spec §4.3
// Connection's "attach/session-begin" lifecycle.
func (c *Connector) Connect(ctx context.Context) (driver.Conn, error) {
	table := c.env.table

	var srvh oci.Handle
	rc := table.HandleAlloc(c.env.envh, &srvh, oci.HTypeServer, 0, 0)
	if rc != oci.Success {
		return nil, newError(KindVendor, "Connect", "OCIHandleAlloc(server) failed")
	}
	c.env.counters.Add(memstat.Handles, 1)

	errh, err := c.env.newErrorHandle()
	if err != nil {
		table.HandleFree(srvh, oci.HTypeServer)
		return nil, err
	}

	connStrBytes := []byte(c.dsn.connectString)
	var connPtr *byte
	if len(connStrBytes) > 0 {
		connPtr = &connStrBytes[0]
	}
	rc = table.ServerAttach(srvh, errh, ptrOrNil(connPtr), int32(len(connStrBytes)), oci.ModeDefault)
	if err := c.env.checkRC(rc, errh, "OCIServerAttach", Source{Kind: "connection"}); err != nil {
		table.HandleFree(srvh, oci.HTypeServer)
		table.HandleFree(errh, oci.HTypeError)
		return nil, err
	}

	var svch oci.Handle
	rc = table.HandleAlloc(c.env.envh, &svch, oci.HTypeSvcCtx, 0, 0)
	if rc != oci.Success {
		table.ServerDetach(srvh, errh, oci.ModeDefault)
		table.HandleFree(srvh, oci.HTypeServer)
		table.HandleFree(errh, oci.HTypeError)
		return nil, newError(KindVendor, "Connect", "OCIHandleAlloc(svcctx) failed")
	}
	srvhAttr := srvh
	table.AttrSet(svch, oci.HTypeSvcCtx, uintptr(srvhAttr), 0, oci.AttrServer, errh)

	var userh oci.Handle
	table.HandleAlloc(c.env.envh, &userh, oci.HTypeSession, 0, 0)

	if len(c.dsn.user) > 0 {
		u := []byte(c.dsn.user)
		table.AttrSet(userh, oci.HTypeSession, uintptr(ptrOfByteSlice(u)), uint32(len(u)), oci.AttrUsername, errh)
	}
	if len(c.dsn.password) > 0 {
		p := []byte(c.dsn.password)
		table.AttrSet(userh, oci.HTypeSession, uintptr(ptrOfByteSlice(p)), uint32(len(p)), oci.AttrPassword, errh)
	}

	credt := uint32(oci.CredRDBMS)
	var sessMode uint32 = oci.AuthDefault
	switch c.dsn.mode {
	case SessionSysDBA:
		sessMode = oci.AuthSysDba
	case SessionSysOper:
		sessMode = oci.AuthSysOper
	}

	rc = table.SessionBegin(svch, errh, userh, credt, sessMode)
	if err := c.env.checkRC(rc, errh, "OCISessionBegin", Source{Kind: "connection"}); err != nil {
		table.HandleFree(userh, oci.HTypeSession)
		table.HandleFree(svch, oci.HTypeSvcCtx)
		table.ServerDetach(srvh, errh, oci.ModeDefault)
		table.HandleFree(srvh, oci.HTypeServer)
		table.HandleFree(errh, oci.HTypeError)
		return nil, err
	}
	table.AttrSet(svch, oci.HTypeSvcCtx, uintptr(userh), 0, oci.AttrSession, errh)

	conn := &Conn{
		env:          c.env,
		srvh:         srvh,
		svch:         svch,
		userh:        userh,
		errh:         errh,
		autocommit:   true,
		queryTimeout: c.dsn.queryTimeout,
	}
	if c.dsn.sessionTag != "" {
		conn.sessionTag = c.dsn.sessionTag
	}
	return conn, nil
}

// Driver returns the underlying Driver.
func (c *Connector) Driver() driver.Driver { return c.driver }

func ptrOrNil(p *byte) *byte {
	if p == nil {
		var zero byte
		return &zero
	}
	return p
}

var _ driver.Connector = (*Connector)(nil)
