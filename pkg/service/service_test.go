package service

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

type fake struct {
	name  string
	err   error
	trail *[]string
}

func (f *fake) Run() { *f.trail = append(*f.trail, "run "+f.name) }
func (f *fake) Shutdown(context.Context) error {
	*f.trail = append(*f.trail, "stop "+f.name)
	return f.err
}
func (f *fake) String() string { return f.name }

func TestGroup(t *testing.T) {
	var trail []string
	boom := errors.New("boom")

	g := Group{}
	g.Add(&fake{name: "a", trail: &trail}, "not runnable", nil, &fake{name: "b", err: boom, trail: &trail})
	g.Start()
	err := g.Shutdown(context.Background())

	want := []string{"run a", "run b", "stop b", "stop a"}
	if !reflect.DeepEqual(trail, want) {
		t.Errorf("trail = %v, want %v", trail, want)
	}
	if !errors.Is(err, boom) {
		t.Errorf("shutdown error = %v", err)
	}
}

func TestGroupCanceledIsNotAnError(t *testing.T) {
	var trail []string
	g := Group{}
	g.Add(&fake{name: "a", err: context.Canceled, trail: &trail})
	if err := g.Shutdown(context.Background()); err != nil {
		t.Errorf("unexpected error %v", err)
	}
}
