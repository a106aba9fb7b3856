package topology

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/san-kum/latticeflow/internal/grid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRead(t *testing.T) {
	src := "4\n3\n1111\n0 0 1 0\n1111\n"
	topo, err := Read(strings.NewReader(src))
	require.NoError(t, err)

	assert.Equal(t, 4, topo.NX)
	assert.Equal(t, 3, topo.NY)
	// first row in the file is the top row
	assert.Equal(t, 1, topo.At(0, 2))
	assert.Equal(t, 0, topo.At(0, 1))
	assert.Equal(t, 1, topo.At(2, 1))
	assert.Equal(t, 0, topo.At(3, 1))
	assert.Equal(t, 1, topo.At(3, 0))
}

func TestRead_Malformed(t *testing.T) {
	tests := map[string]string{
		"missing ny":    "4",
		"short body":    "2\n2\n00\n0",
		"bad character": "2\n2\n0x\n00\n",
		"bad size":      "a\n2\n",
		"zero size":     "0\n2\n",
	}
	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Read(strings.NewReader(src))
			assert.Error(t, err)
		})
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	topo, err := Cylinder(40, 20, 4)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, topo))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 22)
	assert.Equal(t, "40", lines[0])
	assert.Equal(t, strings.Repeat("1", 40), lines[2])

	got, err := Read(&buf)
	require.NoError(t, err)
	if diff := cmp.Diff(topo, got); diff != "" {
		t.Errorf("round trip (-want +got):\n%s", diff)
	}

	path := filepath.Join(t.TempDir(), "cyl.topo")
	require.NoError(t, Save(path, topo))
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, topo.Tags, loaded.Tags)
}

func TestGenerate(t *testing.T) {
	tests := []struct {
		kind  string
		fluid int
	}{
		{"periodic", 50},
		{"channel", 30},
		{"box", 24},
	}
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			topo, err := Generate(tt.kind, 10, 5, 0)
			require.NoError(t, err)
			assert.Equal(t, tt.fluid, topo.FluidCount())
		})
	}

	_, err := Generate("sphere", 10, 5, 0)
	assert.Error(t, err)
	_, err = Generate("cylinder", 40, 10, 6)
	assert.Error(t, err, "radius too large for the channel")
}

func TestCylinderObstacle(t *testing.T) {
	topo, err := Cylinder(80, 31, 5)
	require.NoError(t, err)
	assert.False(t, topo.IsFluid(20, 15), "centre is solid")
	assert.True(t, topo.IsFluid(60, 15))
	assert.True(t, topo.IsFluid(20, 9))
}

func TestAnalyze(t *testing.T) {
	topo, err := Box(8, 6)
	require.NoError(t, err)
	r := Analyze(topo)
	assert.Equal(t, 24, r.Fluid)
	assert.Equal(t, 24, r.Solid)
	assert.True(t, r.Connected())
	assert.InDelta(t, 0.5, r.Porosity(), 1e-15)

	// a solid wall splits the box in two
	for j := 0; j < 6; j++ {
		topo.Set(3, j, Solid)
	}
	r = Analyze(topo)
	assert.False(t, r.Connected())
	assert.Equal(t, []int{12, 8}, r.Components)
}

func TestAnalyze_PeriodicWrap(t *testing.T) {
	topo, err := grid.NewTopology(6, 4)
	require.NoError(t, err)
	for j := 0; j < 4; j++ {
		topo.Set(2, j, Solid)
	}
	// columns 3..5 connect to 0..1 across the periodic edge
	r := Analyze(topo)
	assert.Equal(t, []int{20}, r.Components)
}
