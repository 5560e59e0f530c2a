package templates

import (
	"reflect"
	"testing"
)

func TestLookup(t *testing.T) {
	if _, ok := Lookup("http-component"); !ok {
		t.Error("http-component not registered")
	}
	if _, ok := Lookup("nope"); ok {
		t.Error("unexpected template nope")
	}
	if got, want := Names(), []string{"fruit", "http-component"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Names = %v, want %v", got, want)
	}
}
