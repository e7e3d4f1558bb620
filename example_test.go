package cedar_test

import (
	"fmt"
	"log"

	"github.com/charbonnierg/cedar"
	"github.com/charbonnierg/cedar/types"
)

func Example() {
	ps, err := cedar.NewPolicySetFromBytes("policy.cedar", []byte(`
		permit (
			principal in Group::"editors",
			action == Action::"edit",
			resource is Doc
		)
		when { resource.draft };
	`))
	if err != nil {
		log.Fatal(err)
	}

	entities, err := types.NewEntityMap([]types.Entity{
		{
			UID:     types.NewEntityUID("User", "alice"),
			Parents: types.NewEntityUIDSet(types.NewEntityUID("Group", "editors")),
		},
		{
			UID:        types.NewEntityUID("Doc", "spec"),
			Attributes: types.NewRecord(types.RecordMap{"draft": types.True}),
		},
	})
	if err != nil {
		log.Fatal(err)
	}

	resp := cedar.Authorize(ps, entities, cedar.Request{
		Principal: types.NewEntityUID("User", "alice"),
		Action:    types.NewEntityUID("Action", "edit"),
		Resource:  types.NewEntityUID("Doc", "spec"),
	})
	fmt.Println(resp.Decision, resp.Diagnostics.Reasons)
	// Output: Allow [policy0]
}
