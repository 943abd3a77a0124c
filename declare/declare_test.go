package declare_test

import (
	"fmt"

	"github.com/robloxfile/rbxdom"
	. "github.com/robloxfile/rbxdom/declare"
)

func Example() {
	dom, roots, err := Root{
		Instance("Part", Ref("RBX12345678"),
			Property("Name", String, "BasePlate"),
			Property("CanCollide", Bool, true),
			Property("Position", Vector3, 0, 10, 0),
			Property("Size", Vector3, 2, 1.2, 4),
			Instance("CFrameValue",
				Property("Name", String, "Value"),
				Property("Value", CFrame, 0, 0, 0, 1, 0, 0, 0, 1, 0, 0, 0, 1),
			),
			Instance("ObjectValue",
				Property("Name", String, "Value"),
				Property("Value", Reference, "RBX12345678"),
			),
		),
	}.Declare()
	if err != nil {
		fmt.Println(err)
		return
	}

	part, _ := dom.Get(roots[0])
	fmt.Println(part.Name, part.Get("CanCollide"), part.Get("Position"), part.Get("Size"))

	children := part.Children()
	objectValue, _ := dom.Get(children[1])
	ref := objectValue.Get("Value").(rbxfile.ValueRef)
	fmt.Println(ref.Ref == roots[0])
	// Output:
	// BasePlate true {0, 10, 0} {2, 1.2, 4}
	// true
}
