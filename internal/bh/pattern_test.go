package bh

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/bemgo/internal/bemjson"
)

func TestParsePattern(t *testing.T) {
	testCases := []struct {
		expr string
		want string
		ok   bool
	}{
		{expr: "button", want: "button", ok: true},
		{expr: "button_size_l", want: "button_size_l", ok: true},
		{expr: "button_disabled", want: "button_disabled", ok: true},
		{expr: "button_disabled_", want: "button_disabled", ok: true},
		{expr: "menu__item", want: "menu__item", ok: true},
		{expr: "menu_theme_dark__item_active", want: "menu_theme_dark__item_active", ok: true},
		{expr: "menu__item_state_on_off", want: "menu__item_state_on_off", ok: true},
		{expr: "", ok: false},
		{expr: "_mod", ok: false},
		{expr: "__elem", ok: false},
		{expr: "menu__", ok: false},
	}

	for _, tc := range testCases {
		t.Run(tc.expr, func(t *testing.T) {
			p, ok := parsePattern(tc.expr)
			require.Equal(t, tc.ok, ok)
			if ok {
				assert.Equal(t, tc.want, p.String())
			}
		})
	}
}

func TestPattern_Matches(t *testing.T) {
	mustParse := func(expr string) pattern {
		p, ok := parsePattern(expr)
		require.True(t, ok)
		return p
	}

	t.Run("block modifier value", func(t *testing.T) {
		p := mustParse("button_size_l")
		assert.True(t, p.matches(&bemjson.Node{Block: "button", Mods: bemjson.Mods{"size": "l"}}))
		assert.False(t, p.matches(&bemjson.Node{Block: "button", Mods: bemjson.Mods{"size": "m"}}))
		assert.False(t, p.matches(&bemjson.Node{Block: "button"}))
	})

	t.Run("presence requires true", func(t *testing.T) {
		p := mustParse("button_disabled")
		assert.True(t, p.matches(&bemjson.Node{Block: "button", Mods: bemjson.Mods{"disabled": true}}))
		assert.False(t, p.matches(&bemjson.Node{Block: "button", Mods: bemjson.Mods{"disabled": "yes"}}))
		assert.False(t, p.matches(&bemjson.Node{Block: "button", Mods: bemjson.Mods{"disabled": false}}))
	})

	t.Run("element checks block modifiers on the block", func(t *testing.T) {
		p := mustParse("menu_theme_dark__item")
		n := &bemjson.Node{Block: "menu", Elem: "item", BlockMods: bemjson.Mods{"theme": "dark"}}
		assert.True(t, p.matches(n))
		n.BlockMods = bemjson.Mods{"theme": "light"}
		assert.False(t, p.matches(n))
	})

	t.Run("element modifier", func(t *testing.T) {
		p := mustParse("menu__item_active")
		assert.True(t, p.matches(&bemjson.Node{Block: "menu", Elem: "item", Mods: bemjson.Mods{"active": true}}))
		assert.False(t, p.matches(&bemjson.Node{Block: "menu", Elem: "item"}))
	})
}
