package flagx

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	allowed := []string{"-c", "-config"}

	tests := []struct {
		name    string
		args    []string
		allowed []string
		want    []string
	}{
		{
			name:    "separate value kept, foreign flags dropped",
			args:    []string{"-c", "conf.json", "-m", "local", "-a", ":9090"},
			allowed: allowed,
			want:    []string{"-c", "conf.json"},
		},
		{
			name:    "equals form kept whole",
			args:    []string{"-config=alt.json", "-b", "files"},
			allowed: allowed,
			want:    []string{"-config=alt.json"},
		},
		{
			name:    "order preserved when both forms appear",
			args:    []string{"-config=first.json", "-c", "second.json"},
			allowed: allowed,
			want:    []string{"-config=first.json", "-c", "second.json"},
		},
		{
			name:    "nothing allowed yields empty non-nil slice",
			args:    []string{"-m", "oss", "positional"},
			allowed: allowed,
			want:    []string{},
		},
		{
			name:    "trailing flag without value survives",
			args:    []string{"-c"},
			allowed: allowed,
			want:    []string{"-c"},
		},
		{
			name:    "dash-starting token is not consumed as a value",
			args:    []string{"-c", "-m"},
			allowed: allowed,
			want:    []string{"-c"},
		},
		{
			name:    "several allowed flags pass through together",
			args:    []string{"-a", ":8080", "-c", "conf.json", "-z", "x"},
			allowed: []string{"-c", "-a"},
			want:    []string{"-a", ":8080", "-c", "conf.json"},
		},
		{
			name:    "repeated flag kept in order",
			args:    []string{"-c", "one.json", "-c", "two.json"},
			allowed: []string{"-c"},
			want:    []string{"-c", "one.json", "-c", "two.json"},
		},
		{
			name:    "empty input",
			args:    []string{},
			allowed: allowed,
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.allowed))
		})
	}
}

func TestJsonConfigFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	t.Run("short form", func(t *testing.T) {
		os.Args = []string{"fileporter", "-c", "/etc/fileporter.json"}
		assert.Equal(t, "/etc/fileporter.json", JsonConfigFlags())
	})

	t.Run("long form", func(t *testing.T) {
		os.Args = []string{"fileporter", "-config", "/etc/alt.json"}
		assert.Equal(t, "/etc/alt.json", JsonConfigFlags())
	})

	t.Run("absent", func(t *testing.T) {
		os.Args = []string{"fileporter", "-m", "local", "-a", ":9090"}
		assert.Empty(t, JsonConfigFlags())
	})

	t.Run("last occurrence wins", func(t *testing.T) {
		os.Args = []string{"fileporter", "-c", "/one.json", "-config", "/two.json"}
		assert.Equal(t, "/two.json", JsonConfigFlags())
	})
}
