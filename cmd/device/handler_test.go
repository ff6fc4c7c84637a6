package device

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	utilexec "k8s.io/utils/exec"
	testingexec "k8s.io/utils/exec/testing"

	cmdcore "github.com/projecteru2/blkinfo/cmd/core"
	"github.com/projecteru2/blkinfo/config"
	"github.com/projecteru2/blkinfo/lsblk"
)

const lsblkOutput = `{"blockdevices": [
	{"name":"sda","size":"931.5G","type":"disk","mountpoint":null,"children":[
		{"name":"sda1","size":"512M","type":"part","mountpoint":"/boot/efi"},
		{"name":"sda2","size":"931G","type":"part","mountpoint":"/"}
	]},
	{"name":"sr0","size":"1024M","type":"rom","mountpoint":null}
]}`

// newHandler returns a Handler whose single lsblk run prints stdout.
func newHandler(t *testing.T, stdout string) (Handler, *testingexec.FakeCmd) {
	t.Helper()
	fcmd := &testingexec.FakeCmd{
		OutputScript: []testingexec.FakeAction{
			func() ([]byte, []byte, error) { return []byte(stdout), nil, nil },
		},
	}
	fexec := &testingexec.FakeExec{
		CommandScript: []testingexec.FakeCommandAction{
			func(cmd string, args ...string) utilexec.Cmd {
				return testingexec.InitFakeCmd(fcmd, cmd, args...)
			},
		},
		LookPathFunc: func(file string) (string, error) { return "/usr/bin/" + file, nil },
	}
	conf := config.DefaultConfig()
	return Handler{cmdcore.BaseHandler{
		ConfProvider: func() *config.Config { return conf },
		Exec:         fexec,
	}}, fcmd
}

// command returns the named subcommand wired to h, writing into out.
func command(t *testing.T, h Handler, name string, out *bytes.Buffer) *cobra.Command {
	t.Helper()
	for _, c := range Commands(h) {
		if c.Name() == name {
			c.SetOut(out)
			return c
		}
	}
	t.Fatalf("no %s command", name)
	return nil
}

func TestQueryParent(t *testing.T) {
	h, fcmd := newHandler(t, `{"blockdevices":[{"name":"sda","size":"8G","type":"disk","mountpoint":null}]}`)
	var out bytes.Buffer

	require.NoError(t, h.Query(command(t, h, "query", &out), []string{"sda"}))
	assert.Equal(t, `{"name":"sda","size":"8G","type":"disk","mountpoint":null}`+"\n", out.String())
	assert.Equal(t, []string{"lsblk", "-J", "-o", "NAME,SIZE,TYPE,MOUNTPOINT"}, fcmd.Argv)
}

func TestQueryChild(t *testing.T) {
	h, _ := newHandler(t, lsblkOutput)
	var out bytes.Buffer

	require.NoError(t, h.Query(command(t, h, "query", &out), []string{"sda1"}))

	var got map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, map[string]any{
		"name": "sda1", "size": "512M", "type": "part", "mountpoint": "/boot/efi",
	}, got)
	assert.Equal(t, 1, bytes.Count(out.Bytes(), []byte("\n")))
}

func TestQueryParentIncludesChildren(t *testing.T) {
	h, _ := newHandler(t, lsblkOutput)
	var out bytes.Buffer

	require.NoError(t, h.Query(command(t, h, "query", &out), []string{"sda"}))

	var got struct {
		Name     string `json:"name"`
		Children []struct {
			Name string `json:"name"`
		} `json:"children"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, "sda", got.Name)
	assert.Len(t, got.Children, 2)
}

func TestQueryErrors(t *testing.T) {
	tests := []struct {
		name    string
		stdout  string
		device  string
		wantErr error
	}{
		{name: "not found", stdout: lsblkOutput, device: "nvme0n1", wantErr: lsblk.ErrDeviceNotFound},
		{name: "no blockdevices", stdout: `{}`, device: "sda", wantErr: lsblk.ErrNoBlockDevices},
		{name: "malformed", stdout: `lsblk: unknown column`, device: "sda"},
		{name: "empty name", stdout: lsblkOutput, device: "", wantErr: ErrEmptyDeviceName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newHandler(t, tt.stdout)
			var out bytes.Buffer
			err := h.Query(command(t, h, "query", &out), []string{tt.device})
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			assert.Empty(t, out.String())
		})
	}
}

func TestQueryNilConfig(t *testing.T) {
	h := Handler{cmdcore.BaseHandler{ConfProvider: func() *config.Config { return nil }}}
	err := h.Query(&cobra.Command{}, []string{"sda"})
	assert.EqualError(t, err, "config not initialized")
}

func TestList(t *testing.T) {
	h, _ := newHandler(t, lsblkOutput)
	var out bytes.Buffer

	require.NoError(t, h.List(command(t, h, "list", &out), nil))
	assert.Equal(t,
		"NAME    TYPE  SIZE    MOUNTPOINT\n"+
			"sda     disk  931.5G  \n"+
			"  sda1  part  512M    /boot/efi\n"+
			"  sda2  part  931G    /\n"+
			"sr0     rom   1024M   \n",
		out.String())
}

func TestListFiltered(t *testing.T) {
	h, _ := newHandler(t, lsblkOutput)
	var out bytes.Buffer
	cmd := command(t, h, "list", &out)
	require.NoError(t, cmd.Flags().Set("type", "part"))
	require.NoError(t, cmd.Flags().Set("min-size", "1G"))

	require.NoError(t, h.List(cmd, nil))
	assert.Equal(t,
		"NAME    TYPE  SIZE  MOUNTPOINT\n"+
			"  sda2  part  931G  /\n",
		out.String())
}

func TestListNoMatch(t *testing.T) {
	h, _ := newHandler(t, lsblkOutput)
	var out bytes.Buffer
	cmd := command(t, h, "list", &out)
	require.NoError(t, cmd.Flags().Set("type", "lvm"))

	require.NoError(t, h.List(cmd, nil))
	assert.Equal(t, "No devices found.\n", out.String())
}

func TestListInvalidMinSize(t *testing.T) {
	h, fcmd := newHandler(t, lsblkOutput)
	var out bytes.Buffer
	cmd := command(t, h, "list", &out)
	require.NoError(t, cmd.Flags().Set("min-size", "lots"))

	err := h.List(cmd, nil)
	assert.ErrorContains(t, err, "invalid --min-size")
	assert.Zero(t, fcmd.OutputCalls)
}
