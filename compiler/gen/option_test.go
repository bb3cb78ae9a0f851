package gen

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/archgen/schema"
)

func TestNewConfigDefaults(t *testing.T) {
	c, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, DefaultProjectName, c.ProjectName)
	assert.Equal(t, "example.com/generated-app", c.ModulePath)
	assert.False(t, c.Grouped)
	assert.Nil(t, c.Progress)
	assert.NotNil(t, c.Logger)
}

func TestWithGroups(t *testing.T) {
	t.Run("enables grouping", func(t *testing.T) {
		groups := schema.Groups{{Name: "Sales", Tables: []string{"orders"}}}
		c, err := NewConfig(WithGroups(groups))

		require.NoError(t, err)
		assert.True(t, c.Grouped)
		assert.Equal(t, groups, c.Groups)
	})

	t.Run("empty groups still group", func(t *testing.T) {
		c, err := NewConfig(WithGroups(nil))

		require.NoError(t, err)
		assert.True(t, c.Grouped)
	})

	t.Run("rejects a table in two groups", func(t *testing.T) {
		_, err := NewConfig(WithGroups(schema.Groups{
			{Name: "Sales", Tables: []string{"orders"}},
			{Name: "Billing", Tables: []string{"orders"}},
		}))

		require.Error(t, err)
		assert.True(t, IsConfigError(err))
		assert.True(t, schema.IsGroupError(err))
	})
}

func TestWithProjectName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		module  string
		wantErr bool
	}{
		{"pascal", "Shop", "Shop", "example.com/shop", false},
		{"words", "my shop", "MyShop", "example.com/my-shop", false},
		{"snake", "order_service", "OrderService", "example.com/order-service", false},
		{"empty", "", "", "", true},
		{"punctuation only", "--", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewConfig(WithProjectName(tt.input))
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, IsConfigError(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.ProjectName)
			assert.Equal(t, tt.module, c.ModulePath)
		})
	}
}

func TestWithModulePath(t *testing.T) {
	tests := []struct {
		module  string
		wantErr bool
	}{
		{"github.com/acme/shop", false},
		{"shop", false},
		{"", true},
		{"github.com/acme shop", true},
		{"/abs/path", true},
		{"github.com/acme/", true},
		{`github.com\acme`, true},
	}
	for _, tt := range tests {
		t.Run(tt.module, func(t *testing.T) {
			c, err := NewConfig(WithProjectName("Shop"), WithModulePath(tt.module))
			if tt.wantErr {
				require.ErrorIs(t, err, ErrMissingConfig)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.module, c.ModulePath)
		})
	}
}

func TestWithTables(t *testing.T) {
	c, err := NewConfig(WithTables("orders", "order_*"), WithTables("public.users"), WithExcludeTables("*_log"))
	require.NoError(t, err)
	assert.Equal(t, []string{"orders", "order_*", "public.users"}, c.Include)
	assert.Equal(t, []string{"*_log"}, c.Exclude)

	_, err = NewConfig(WithTables("["))
	require.Error(t, err)
	assert.True(t, IsConfigError(err))
	_, err = NewConfig(WithExcludeTables("orders", "[a-"))
	require.Error(t, err)
}

func TestWithLogger(t *testing.T) {
	var b bytes.Buffer
	l := slog.New(slog.NewTextHandler(&b, nil))
	c, err := NewConfig(WithLogger(l))
	require.NoError(t, err)
	assert.Same(t, l, c.Logger)

	_, err = NewConfig(WithLogger(nil))
	require.ErrorIs(t, err, ErrMissingConfig)
}

func TestApplyAll(t *testing.T) {
	c := &Config{}
	err := c.ApplyAll(
		WithProjectName(""),
		WithModulePath("github.com/acme/shop"),
		WithLogger(nil),
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ProjectName")
	assert.Contains(t, err.Error(), "Logger")
	// Valid options still apply.
	assert.Equal(t, "github.com/acme/shop", c.ModulePath)
}
