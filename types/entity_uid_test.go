package types_test

import (
	"encoding/json"
	"testing"

	"github.com/charbonnierg/cedar/internal/testutil"
	"github.com/charbonnierg/cedar/types"
)

func TestEntityUID(t *testing.T) {
	t.Parallel()

	t.Run("Equal", func(t *testing.T) {
		t.Parallel()
		alice := types.NewEntityUID("User", "alice")
		alice2 := types.NewEntityUID("User", "alice")
		bob := types.NewEntityUID("User", "bob")
		admin := types.NewEntityUID("Admin", "alice")
		testutil.FatalIf(t, !alice.Equal(alice2), "%v not Equal to %v", alice, alice2)
		testutil.FatalIf(t, alice.Equal(bob), "%v Equal to %v", alice, bob)
		testutil.FatalIf(t, alice.Equal(admin), "%v Equal to %v", alice, admin)
		testutil.FatalIf(t, alice.Equal(types.String("alice")), "%v Equal to a string", alice)
	})

	t.Run("String", func(t *testing.T) {
		t.Parallel()
		testutil.Equals(t, types.NewEntityUID("User", "alice").String(), `User::"alice"`)
		testutil.Equals(t, types.NewEntityUID("NS::User", `quo"ted`).String(), `NS::User::"quo\"ted"`)
	})

	t.Run("IsZero", func(t *testing.T) {
		t.Parallel()
		testutil.Equals(t, types.EntityUID{}.IsZero(), true)
		testutil.Equals(t, types.NewEntityUID("User", "").IsZero(), false)
		testutil.Equals(t, types.NewEntityUID("", "alice").IsZero(), false)
	})

	t.Run("Hash", func(t *testing.T) {
		t.Parallel()
		a := types.NewEntityUID("User", "alice")
		testutil.Equals(t, a.Hash(), types.NewEntityUID("User", "alice").Hash())
		testutil.FatalIf(t, a.Hash() == types.NewEntityUID("User", "bob").Hash(), "unexpected Hash collision")
	})
}

func TestParseEntityUID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want types.EntityUID
		ok   bool
	}{
		{"simple", `User::"alice"`, types.NewEntityUID("User", "alice"), true},
		{"namespaced", `PhotoApp::User::"alice"`, types.NewEntityUID("PhotoApp::User", "alice"), true},
		{"escaped id", `User::"a\"b"`, types.NewEntityUID("User", `a"b`), true},
		{"missing separator", `User`, types.EntityUID{}, false},
		{"missing quotes", `User::alice`, types.EntityUID{}, false},
		{"empty type", `::"alice"`, types.EntityUID{}, false},
		{"bad type", `1User::"alice"`, types.EntityUID{}, false},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := types.ParseEntityUID(tt.in)
			if !tt.ok {
				testutil.Error(t, err)
				return
			}
			testutil.OK(t, err)
			testutil.Equals(t, got, tt.want)
		})
	}
}

func TestEntityUIDJSON(t *testing.T) {
	t.Parallel()

	t.Run("object form", func(t *testing.T) {
		t.Parallel()
		out, err := json.Marshal(types.NewEntityUID("User", "alice"))
		testutil.OK(t, err)
		testutil.Equals(t, string(out), `{"type":"User","id":"alice"}`)

		var back types.EntityUID
		testutil.OK(t, json.Unmarshal(out, &back))
		testutil.Equals(t, back, types.NewEntityUID("User", "alice"))
	})

	t.Run("string form", func(t *testing.T) {
		t.Parallel()
		var uid types.EntityUID
		testutil.OK(t, json.Unmarshal([]byte(`"NS::User::\"alice\""`), &uid))
		testutil.Equals(t, uid, types.NewEntityUID("NS::User", "alice"))
	})

	t.Run("bad type rejected", func(t *testing.T) {
		t.Parallel()
		var uid types.EntityUID
		testutil.Error(t, json.Unmarshal([]byte(`{"type":"","id":"x"}`), &uid))
	})
}
