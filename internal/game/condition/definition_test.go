package condition_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/arena/internal/game/condition"
)

func TestDefault_CoversEveryKind(t *testing.T) {
	reg, err := condition.Default()
	require.NoError(t, err)
	for _, k := range condition.AllKinds {
		def, ok := reg.Get(k)
		require.True(t, ok, "missing %s", k)
		assert.Equal(t, k, def.Kind)
	}
}

func TestDefault_RefreshOnlyKinds(t *testing.T) {
	reg, err := condition.Default()
	require.NoError(t, err)
	for _, k := range []condition.Kind{condition.Chill, condition.Expose} {
		def, _ := reg.Get(k)
		assert.True(t, def.RefreshOnly, "%s must refresh rather than stack", k)
	}
	expose, _ := reg.Get(condition.Expose)
	assert.Equal(t, condition.Consumed, expose.DurationType)
}

func TestRegistry_Register_RejectsDuplicate(t *testing.T) {
	reg := condition.NewRegistry()
	def := &condition.Def{Kind: condition.Burn, Name: "Burning", DurationType: condition.Turns, MaxStacks: 3}
	require.NoError(t, reg.Register(def))
	assert.Error(t, reg.Register(def))
}

func TestDef_Validate(t *testing.T) {
	cases := map[string]condition.Def{
		"unknown kind":     {Kind: "frostbite", Name: "x", DurationType: condition.Turns, MaxStacks: 1},
		"empty name":       {Kind: condition.Burn, DurationType: condition.Turns, MaxStacks: 1},
		"bad duration":     {Kind: condition.Burn, Name: "x", DurationType: "rounds", MaxStacks: 1},
		"zero stacks":      {Kind: condition.Burn, Name: "x", DurationType: condition.Turns},
		"refresh stacking": {Kind: condition.Chill, Name: "x", DurationType: condition.Turns, MaxStacks: 2, RefreshOnly: true},
		"miss chance":      {Kind: condition.Blinded, Name: "x", DurationType: condition.Turns, MaxStacks: 1, MissChance: 1.5},
	}
	for name, def := range cases {
		def := def
		t.Run(name, func(t *testing.T) {
			assert.Error(t, def.Validate())
		})
	}
}

func TestDef_AllowsSource(t *testing.T) {
	def := &condition.Def{Sources: []string{"warrior"}}
	assert.True(t, def.AllowsSource("warrior"))
	assert.False(t, def.AllowsSource("mage"))
	assert.True(t, (&condition.Def{}).AllowsSource("anyone"))
}

func TestLoadDirectory_ParsesYAML(t *testing.T) {
	dir := t.TempDir()
	for _, k := range condition.AllKinds {
		body := "kind: " + string(k) + "\nname: " + string(k) + "\nduration_type: turns\nmax_stacks: 1\n"
		require.NoError(t, os.WriteFile(filepath.Join(dir, string(k)+".yaml"), []byte(body), 0644))
	}
	reg, err := condition.LoadDirectory(dir)
	require.NoError(t, err)
	assert.Len(t, reg.All(), len(condition.AllKinds))
}

func TestLoadDirectory_IncompleteSet_ReturnsError(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "burn.yaml"),
		[]byte("kind: burn\nname: Burning\nduration_type: turns\nmax_stacks: 3\n"), 0644))
	_, err := condition.LoadDirectory(dir)
	assert.ErrorContains(t, err, "missing definitions")
}

func TestLoadDirectory_UnknownField_ReturnsError(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "burn.yaml"),
		[]byte("kind: burn\nname: Burning\nduration_type: turns\nmax_stacks: 3\nlua_on_tick: boom\n"), 0644))
	_, err := condition.LoadDirectory(dir)
	assert.Error(t, err)
}

func TestLoadDirectory_NonexistentDir_ReturnsError(t *testing.T) {
	_, err := condition.LoadDirectory("/nonexistent/conditions")
	assert.Error(t, err)
}

func TestPropertyKind_ValidOnlyForKnownKinds(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		s := rapid.StringMatching(`[a-z_]{1,16}`).Draw(rt, "kind")
		known := false
		for _, k := range condition.AllKinds {
			if string(k) == s {
				known = true
			}
		}
		assert.Equal(rt, known, condition.Kind(s).Valid())
	})
}
