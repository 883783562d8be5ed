package flagx

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

// serverFlags and seedFlags mirror the sets the commands filter for.
var (
	serverFlags = []string{"-a", "-m", "-d", "-s", "-g", "-t", "-r", "-n", "-l"}
	seedFlags   = []string{"-u", "-p"}
)

func TestFilterArgs(t *testing.T) {
	cmdLine := []string{"-c", "server.yaml", "-d", "postgres://db", "-u", "root@x.io", "-p", "pw", "-t=30"}

	tests := []struct {
		name    string
		args    []string
		allowed []string
		want    []string
	}{
		{"seed flags from a shared command line", cmdLine, seedFlags, []string{"-u", "root@x.io", "-p", "pw"}},
		{"server flags from a shared command line", cmdLine, serverFlags, []string{"-d", "postgres://db", "-t=30"}},
		{"config flags from a shared command line", cmdLine, []string{"-c", "-config"}, []string{"-c", "server.yaml"}},
		{"inline value", []string{"-config=/etc/notekeeper.json"}, []string{"-config"}, []string{"-config=/etc/notekeeper.json"}},
		{"dash token is not a value", []string{"-p", "-u", "root@x.io"}, seedFlags, []string{"-p", "-u", "root@x.io"}},
		{"trailing flag without value", []string{"-u"}, seedFlags, []string{"-u"}},
		{"nothing allowed present", []string{"-x", "1", "positional"}, seedFlags, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.allowed))
		})
	}
}

func TestConfigFileFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"short", []string{"-c", "/etc/notekeeper.yaml", "-a", ":7000"}, "/etc/notekeeper.yaml"},
		{"long", []string{"-u", "root@x.io", "-config", "/etc/notekeeper.json"}, "/etc/notekeeper.json"},
		{"last wins", []string{"-c", "one.json", "-config", "two.json"}, "two.json"},
		{"absent", []string{"-d", "postgres://db"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = append([]string{"testbin"}, tt.args...)
			assert.Equal(t, tt.want, ConfigFileFlags())
		})
	}
}
