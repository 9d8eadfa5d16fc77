package cli

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/unkn0wn-root/redcoll/conn"
	"github.com/unkn0wn-root/redcoll/internal/fakeredis"
)

func fakeDialer(s *fakeredis.Store, seen *conn.Config) Dialer {
	return func(cfg conn.Config) (conn.Executor, func() error, error) {
		if seen != nil {
			*seen = cfg
		}
		return s, func() error { return nil }, nil
	}
}

func run(t *testing.T, s *fakeredis.Store, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd(fakeDialer(s, nil))
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, s *fakeredis.Store, args ...string) []string {
	t.Helper()
	out, err := run(t, s, args...)
	if err != nil {
		t.Fatalf("%v: %v", args, err)
	}
	return strings.Fields(out)
}

func TestVersionSkipsDial(t *testing.T) {
	cmd := NewRootCmd(func(conn.Config) (conn.Executor, func() error, error) {
		t.Fatalf("dialed for an offline command")
		return nil, nil, nil
	})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("version: %v", err)
	}
	if got := out.String(); got != "redcoll v"+Version+"\n" {
		t.Fatalf("version output=%q", got)
	}
}

func TestDialErrorPropagates(t *testing.T) {
	boom := errors.New("refused")
	cmd := NewRootCmd(func(conn.Config) (conn.Executor, func() error, error) { return nil, nil, boom })
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"list", "len", "k"})
	if err := cmd.Execute(); !errors.Is(err, boom) {
		t.Fatalf("err=%v, want %v", err, boom)
	}
}

func TestConnFlagsAndEnv(t *testing.T) {
	t.Setenv("REDCOLL_PASSWORD", "s3cret")
	var cfg conn.Config
	cmd := NewRootCmd(fakeDialer(fakeredis.New(), &cfg))
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--addrs", "a:1, b:2", "--db", "3", "list", "len", "k"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !reflect.DeepEqual(cfg.Addrs, []string{"a:1", "b:2"}) || cfg.DB != 3 {
		t.Fatalf("cfg=%+v", cfg)
	}
	if cfg.Password != "s3cret" {
		t.Fatalf("password from env not applied: %q", cfg.Password)
	}
}

func TestListCommands(t *testing.T) {
	s := fakeredis.New()
	mustRun(t, s, "list", "push", "l", "a", "b", "c", "d")
	if s.Calls("rpush") != 1 {
		t.Fatalf("push issued %d RPUSH, want 1", s.Calls("rpush"))
	}
	if got := mustRun(t, s, "list", "len", "l"); !reflect.DeepEqual(got, []string{"4"}) {
		t.Fatalf("len=%v", got)
	}
	if got := mustRun(t, s, "list", "slice", "l", "--", "1", "-1"); !reflect.DeepEqual(got, []string{"b", "c"}) {
		t.Fatalf("slice=%v", got)
	}
	if got := mustRun(t, s, "list", "pop", "l"); !reflect.DeepEqual(got, []string{"d"}) {
		t.Fatalf("pop=%v", got)
	}
	if got := mustRun(t, s, "list", "all", "l"); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Fatalf("all=%v", got)
	}
	if _, err := run(t, s, "list", "pop", "empty"); err == nil {
		t.Fatalf("pop on empty list succeeded")
	}
	if _, err := run(t, s, "list", "slice", "l", "x", "1"); err == nil {
		t.Fatalf("non-integer start accepted")
	}
}

func TestSetCommands(t *testing.T) {
	s := fakeredis.New()
	if got := mustRun(t, s, "set", "add", "a", "x", "y", "z", "x"); !reflect.DeepEqual(got, []string{"added", "3"}) {
		t.Fatalf("add=%v", got)
	}
	mustRun(t, s, "set", "add", "b", "y", "z", "w")
	if got := mustRun(t, s, "set", "inter", "a", "b"); !reflect.DeepEqual(got, []string{"y", "z"}) {
		t.Fatalf("inter=%v", got)
	}
	if got := mustRun(t, s, "set", "union", "a", "b"); !reflect.DeepEqual(got, []string{"w", "x", "y", "z"}) {
		t.Fatalf("union=%v", got)
	}
	if got := mustRun(t, s, "set", "diff", "a", "b"); !reflect.DeepEqual(got, []string{"x"}) {
		t.Fatalf("diff=%v", got)
	}
	if got := mustRun(t, s, "set", "has", "a", "w"); !reflect.DeepEqual(got, []string{"false"}) {
		t.Fatalf("has=%v", got)
	}
}

func TestZSetCommands(t *testing.T) {
	s := fakeredis.New()
	mustRun(t, s, "zset", "add", "z", "3", "c")
	mustRun(t, s, "zset", "add", "z", "1", "a")
	mustRun(t, s, "zset", "add", "z", "2.5", "b")
	if got := mustRun(t, s, "zset", "members", "z"); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Fatalf("members=%v", got)
	}
	if got := mustRun(t, s, "zset", "between", "z", "2", "3"); !reflect.DeepEqual(got, []string{"b", "c"}) {
		t.Fatalf("between=%v", got)
	}
	if got := mustRun(t, s, "zset", "score", "z", "b"); !reflect.DeepEqual(got, []string{"2.5"}) {
		t.Fatalf("score=%v", got)
	}
	if _, err := run(t, s, "zset", "score", "z", "nope"); err == nil {
		t.Fatalf("score of a missing member succeeded")
	}
}

func TestHashCommands(t *testing.T) {
	s := fakeredis.New()
	mustRun(t, s, "hash", "set", "h", "name", "ada")
	mustRun(t, s, "hash", "set", "h", "lang", "go")
	if got := mustRun(t, s, "hash", "get", "h", "name"); !reflect.DeepEqual(got, []string{"ada"}) {
		t.Fatalf("get=%v", got)
	}
	if got := mustRun(t, s, "hash", "del", "h", "lang", "missing"); !reflect.DeepEqual(got, []string{"deleted", "1"}) {
		t.Fatalf("del=%v", got)
	}
	out, err := run(t, s, "hash", "all", "h")
	if err != nil || out != "<Hash \"h\" [\"name\":\"ada\"]>\n" {
		t.Fatalf("all=%q err=%v", out, err)
	}
	if _, err := run(t, s, "hash", "get", "h", "lang"); err == nil {
		t.Fatalf("get of a deleted field succeeded")
	}
}

func TestTypedPlain(t *testing.T) {
	s := fakeredis.New()
	mustRun(t, s, "typed", "--type", "int", "--base", "16", "append", "n", "ff", "10", "1")
	if got := mustRun(t, s, "list", "all", "n"); !reflect.DeepEqual(got, []string{"ff", "10", "1"}) {
		t.Fatalf("stored=%v", got)
	}
	if got := mustRun(t, s, "typed", "--type", "int", "--base", "16", "at", "--", "n", "-1"); !reflect.DeepEqual(got, []string{"1"}) {
		t.Fatalf("at=%v", got)
	}
	out, err := run(t, s, "typed", "--type", "int", "--base", "16", "repr", "n")
	if err != nil || out != "<TypedList \"n\" int64 [255 16 1]>\n" {
		t.Fatalf("repr=%q err=%v", out, err)
	}

	s.ResetCalls()
	if got := mustRun(t, s, "typed", "--type", "int", "--base", "16", "head", "n", "2"); !reflect.DeepEqual(got, []string{"ff", "10"}) {
		t.Fatalf("head=%v", got)
	}
	if s.Calls("lindex") != 2 {
		t.Fatalf("head issued %d LINDEX, want 2", s.Calls("lindex"))
	}

	if _, err := run(t, s, "typed", "--type", "int", "append", "n", "7", "seven"); err == nil {
		t.Fatalf("append accepted a non-integer")
	}
	if n := mustRun(t, s, "list", "len", "n"); !reflect.DeepEqual(n, []string{"3"}) {
		t.Fatalf("failed append wrote elements, len=%v", n)
	}
	if _, err := run(t, s, "typed", "--type", "int", "all", "n"); err == nil {
		t.Fatalf("decimal view of hex values succeeded")
	}
	if _, err := run(t, s, "typed", "--type", "uuid", "all", "n"); err == nil {
		t.Fatalf("unknown type accepted")
	}
}

func TestTypedEntity(t *testing.T) {
	ctx := context.Background()
	s := fakeredis.New()
	s.Set(ctx, "doc:a", `{"id":"a","n":1}`, 0)
	s.Set(ctx, "doc:c", `{"id":"c","n":3}`, 0)

	mustRun(t, s, "typed", "--entity", "doc", "append", "refs", `{"id":"a"}`, `{"id":"b"}`, `{"id":"c"}`)
	if got := mustRun(t, s, "list", "all", "refs"); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Fatalf("stored ids=%v", got)
	}
	got := mustRun(t, s, "typed", "--entity", "doc", "all", "refs")
	want := []string{`{"id":"a","n":1}`, `{"id":"c","n":3}`}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("all=%v, want %v", got, want)
	}
	if _, err := run(t, s, "typed", "--entity", "doc", "at", "refs", "1"); err == nil {
		t.Fatalf("at on a stale id succeeded")
	}
	if _, err := run(t, s, "typed", "--entity", "doc", "append", "refs", `{"n":9}`); err == nil {
		t.Fatalf("append of a document without id succeeded")
	}
}
