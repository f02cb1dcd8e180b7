// internal/config/dsn.go
//
// Connection strings derived from the database section.
//
// ConnectionURL is what the driver dials.  MaskedConnectionURL is the only
// form that may appear in logs: it reveals one leading character of the
// non-secret fields and never reads the password at all.

package config

import (
	"net"
	"net/url"
	"strconv"
	"unicode/utf8"

	"github.com/go-sql-driver/mysql"
)

const (
	passwordMask = "**"
	fieldMask    = "***"
)

// ConnectionURL builds the driver connection string.  For postgres the user
// and password are percent-encoded, so any byte is safe in the password.
func (d Database) ConnectionURL() string {
	addr := net.JoinHostPort(d.Host, strconv.Itoa(d.Port))

	if d.Driver == DriverMySQL {
		mc := mysql.NewConfig()
		mc.User = d.User
		mc.Passwd = d.Password
		mc.Net = "tcp"
		mc.Addr = addr
		mc.DBName = d.Name
		mc.ParseTime = true
		return mc.FormatDSN()
	}

	u := url.URL{
		Scheme: DriverPostgres,
		User:   url.UserPassword(d.User, d.Password),
		Host:   addr,
		Path:   "/" + d.Name,
	}
	return u.String()
}

// MaskedConnectionURL renders scheme://u***:**@h***:5***/d*** for logs.
func (d Database) MaskedConnectionURL() string {
	scheme := DriverPostgres
	if d.Driver == DriverMySQL {
		scheme = DriverMySQL
	}
	return scheme + "://" +
		maskField(d.User) + ":" + passwordMask + "@" +
		maskField(d.Host) + ":" + maskField(strconv.Itoa(d.Port)) + "/" +
		maskField(d.Name)
}

// maskField keeps the first rune of s and replaces the rest.
func maskField(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return fieldMask
	}
	return string(r) + fieldMask
}
