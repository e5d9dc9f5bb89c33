package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/okoye/zabuza/pkg/zabuza"
	"github.com/okoye/zabuza/pkg/zclient"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Output formats.
const (
	OutputFormatJSON = "json"
	OutputFormatYAML = "yaml"

	NotAvailable = "N/A"

	defaultJSONIndent = "  "
)

// Static errors for the commands package.
var (
	ErrAuthURLRequired  = errors.New("auth URL is required (--auth-url or ZABUZA_AUTH_URL)")
	ErrUsernameRequired = errors.New("username is required (--username or ZABUZA_USERNAME)")
	ErrServerIDRequired = errors.New("server id is required")
)

// stderrLogger writes structured log lines to stderr for --verbose runs.
type stderrLogger struct{}

func (stderrLogger) log(level, msg string, fields map[string]interface{}) {
	fmt.Fprintf(os.Stderr, "%s %s", level, msg)

	for key, value := range fields {
		fmt.Fprintf(os.Stderr, " %s=%v", key, value)
	}

	fmt.Fprintln(os.Stderr)
}

func (l stderrLogger) Debug(msg string, fields map[string]interface{}) { l.log("DEBUG", msg, fields) }
func (l stderrLogger) Info(msg string, fields map[string]interface{})  { l.log("INFO", msg, fields) }
func (l stderrLogger) Warn(msg string, fields map[string]interface{})  { l.log("WARN", msg, fields) }
func (l stderrLogger) Error(msg string, fields map[string]interface{}) { l.log("ERROR", msg, fields) }

// newClient builds a client from flags, environment, and the config file.
func newClient() (zabuza.Client, error) {
	authURL := viper.GetString("auth_url")
	if authURL == "" {
		return nil, ErrAuthURLRequired
	}

	config := &zabuza.Config{
		AuthURL:    authURL,
		Username:   viper.GetString("username"),
		Password:   viper.GetString("password"),
		TenantName: viper.GetString("tenant_name"),
	}

	if viper.GetBool("verbose") {
		config.Debug = true
		config.Logger = stderrLogger{}
	}

	if tokenID := viper.GetString("token"); tokenID != "" {
		token := &zabuza.Token{ID: tokenID}

		if expires := viper.GetString("token_expires"); expires != "" {
			parsed, err := zabuza.ParseTimestamp(expires)
			if err == nil {
				token.Expires = parsed
			}
		}

		config.Token = token
	}

	return zclient.New(config)
}

// renderJSON writes v to stdout as indented JSON.
func renderJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", defaultJSONIndent)

	return encoder.Encode(v)
}

// renderYAML writes v to stdout as YAML.
func renderYAML(v interface{}) error {
	encoder := yaml.NewEncoder(os.Stdout)
	defer func() { _ = encoder.Close() }()

	return encoder.Encode(v)
}

// serverAddresses flattens the address map into "network: ip, ip" lines.
func serverAddresses(server *zabuza.Server) string {
	if len(server.Addresses) == 0 {
		return NotAvailable
	}

	var parts []string

	for network, addrs := range server.Addresses {
		ips := make([]string, 0, len(addrs))
		for _, addr := range addrs {
			ips = append(ips, addr.Addr)
		}

		parts = append(parts, fmt.Sprintf("%s: %s", network, strings.Join(ips, ", ")))
	}

	return strings.Join(parts, "; ")
}

func orNotAvailable(value string) string {
	if value == "" {
		return NotAvailable
	}

	return value
}
