// Package fruit is a small demonstration template that exercises every
// prompt kind and every write action.
package fruit

import (
	"context"

	"github.com/ormasoftchile/scaff/pkg/plugin"
)

const Name = "fruit"

var fruits = []string{"Apple", "Banana"}

type Template struct{}

var _ plugin.Template = Template{}

func (Template) Run(ctx context.Context, rt plugin.Runtime, ec plugin.Handle, _ plugin.RunOptions) ([]plugin.Action, error) {
	var first uint8
	idx, err := rt.Select(ctx, "What to copy", fruits, &first)
	if err != nil {
		return nil, err
	}
	if int(idx) >= len(fruits) {
		return nil, plugin.Otherf("no fruit at index %d", idx)
	}

	dest := "fruit.txt"
	to, err := rt.Prompt(ctx, "Where to copy it", &dest)
	if err != nil {
		return nil, err
	}

	yes := true
	ok, err := rt.Confirm(ctx, "Do it?", &yes)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []plugin.Action{}, nil
	}

	if err := rt.SetVariable(ctx, ec, "fruit", fruits[idx]); err != nil {
		return nil, err
	}
	info, err := rt.EvaluateTemplate(ctx, ec, "om nom nom {{ .fruit }}")
	if err != nil {
		return nil, err
	}

	return []plugin.Action{
		plugin.CopyFileToSubstituted("fruit.txt", to),
		plugin.CopyFileToRaw("fruit.txt", "raw_fruit.txt"),
		plugin.WriteFile("writed.txt", info),
		plugin.WriteFileBinary("binned.bin", []byte{1, 2, 3, 4}),
		plugin.CreateDir("basket"),
	}, nil
}
