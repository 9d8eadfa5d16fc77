package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/unkn0wn-root/redcoll"
	"github.com/unkn0wn-root/redcoll/codec"
	zaplog "github.com/unkn0wn-root/redcoll/log/zap"
	"github.com/unkn0wn-root/redcoll/model"
)

// record is a schemaless entity stored as a JSON document with an "id" field.
type record map[string]any

func (r record) EntityID() string {
	id, _ := r["id"].(string)
	return id
}

type typedOpts struct {
	kind   string
	base   int
	entity string
}

func typedCmd(a *app) *cobra.Command {
	o := &typedOpts{}
	c := &cobra.Command{
		Use:   "typed",
		Short: "List operations with element conversion",
		Long: `Read and write a list through a typed view.

Plain elements are converted with --type. With --entity the list holds
ids of JSON documents stored at "<namespace>:<id>"; ids that no longer
resolve are skipped.`,
	}
	f := c.PersistentFlags()
	f.StringVar(&o.kind, "type", "string", WrapString("Element type: int, float, bool, string or json"))
	f.IntVar(&o.base, "base", 10, WrapString("Base for --type int"))
	f.StringVar(&o.entity, "entity", "", WrapString("Treat elements as ids of documents in this namespace"))

	sub := func(use, short string, args cobra.PositionalArgs) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			Args:  args,
			RunE: func(cmd *cobra.Command, args []string) error {
				return o.run(cmd, a, cmd.Name(), args)
			},
		}
	}
	c.AddCommand(
		sub("all [key]", "Print every resolvable element", cobra.ExactArgs(1)),
		sub("at [key] [index]", "Print the element at index", cobra.ExactArgs(2)),
		sub("append [key] [value...]", "Append values, all or none", cobra.MinimumNArgs(2)),
		sub("head [key] [n]", "Print the first n resolvable elements", cobra.ExactArgs(2)),
		sub("repr [key]", "Print the list representation", cobra.ExactArgs(1)),
	)
	return c
}

func (o *typedOpts) run(cmd *cobra.Command, a *app, action string, args []string) error {
	key, rest := args[0], args[1:]
	if o.entity != "" {
		repo, err := model.NewRedisRepository(model.RedisOptions[record]{
			Namespace: o.entity,
			Executor:  a.exec,
			Codec:     codec.JSON[record]{},
		})
		if err != nil {
			return err
		}
		return runTyped(cmd, a, key, redcoll.Entity[record](repo), showJSON[record], parseJSON[record], action, rest)
	}

	switch o.kind {
	case "int":
		return runPlain[int64](cmd, a, key, codec.Int{Base: o.base}, action, rest)
	case "float":
		return runPlain[float64](cmd, a, key, codec.Float{}, action, rest)
	case "bool":
		return runPlain[bool](cmd, a, key, codec.Bool{}, action, rest)
	case "string":
		return runPlain[string](cmd, a, key, codec.String{}, action, rest)
	case "json":
		return runTyped(cmd, a, key, redcoll.Plain[any](codec.JSON[any]{}), showJSON[any], parseJSON[any], action, rest)
	default:
		return fmt.Errorf("unknown --type %q", o.kind)
	}
}

// runPlain reads arguments and prints elements in their stored form.
func runPlain[T any](cmd *cobra.Command, a *app, key string, c codec.Codec[T], action string, args []string) error {
	show := func(v T) (string, error) {
		b, err := c.Encode(v)
		return string(b), err
	}
	parse := func(s string) (T, error) { return c.Decode([]byte(s)) }
	return runTyped(cmd, a, key, redcoll.Plain(c), show, parse, action, args)
}

func runTyped[T any](
	cmd *cobra.Command,
	a *app,
	key string,
	et redcoll.ElementType[T],
	show func(T) (string, error),
	parse func(string) (T, error),
	action string,
	args []string,
) error {
	ctx := cmd.Context()
	l, err := redcoll.NewTypedList(redcoll.Options[T]{
		Key:    key,
		Type:   et,
		Client: a.exec,
		Logger: zaplog.ZapLogger{L: a.log},
	})
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	switch action {
	case "all":
		vs, err := l.All(ctx)
		if err != nil {
			return err
		}
		for _, v := range vs {
			if err := printValue(out, show, v); err != nil {
				return err
			}
		}
		return nil

	case "at":
		i, err := parseInt("index", args[0])
		if err != nil {
			return err
		}
		v, ok, err := l.At(ctx, i)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("element %d of %q does not resolve", i, key)
		}
		return printValue(out, show, v)

	case "append":
		vs := make([]T, len(args))
		for i, s := range args {
			if vs[i], err = parse(s); err != nil {
				return fmt.Errorf("value %q: %w", s, err)
			}
		}
		return l.Extend(ctx, vs)

	case "head":
		n, err := parseInt("n", args[0])
		if err != nil {
			return err
		}
		if n <= 0 {
			return nil
		}
		for v, err := range l.Iter(ctx) {
			if err != nil {
				return err
			}
			if err := printValue(out, show, v); err != nil {
				return err
			}
			if n--; n == 0 {
				break
			}
		}
		return nil

	case "repr":
		s, err := l.Repr(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, s)
		return nil
	}
	return fmt.Errorf("unknown action %q", action)
}

func printValue[T any](w io.Writer, show func(T) (string, error), v T) error {
	s, err := show(v)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, s)
	return nil
}

func showJSON[T any](v T) (string, error) {
	b, err := json.Marshal(v)
	return string(b), err
}

func parseJSON[T any](s string) (T, error) { return codec.JSON[T]{}.Decode([]byte(s)) }
