package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/unkn0wn-root/redcoll/container"
)

func printLines(w io.Writer, vs []string) {
	for _, v := range vs {
		fmt.Fprintln(w, v)
	}
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

func parseInt(name, s string) (int64, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", name, err)
	}
	return n, nil
}

func parseFloat(name, s string) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number: %w", name, err)
	}
	return f, nil
}

func listCmd(a *app) *cobra.Command {
	c := &cobra.Command{Use: "list", Short: "Raw list operations"}
	l := func(key string) *container.List { return container.NewList(key, a.exec) }

	c.AddCommand(
		&cobra.Command{
			Use:   "all [key]",
			Short: "Print every element",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				vs, err := l(args[0]).All(cmd.Context())
				if err != nil {
					return err
				}
				printLines(cmd.OutOrStdout(), vs)
				return nil
			},
		},
		&cobra.Command{
			Use:   "len [key]",
			Short: "Print the number of elements",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				n, err := l(args[0]).Len(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), n)
				return nil
			},
		},
		&cobra.Command{
			Use:   "push [key] [value...]",
			Short: "Append values with a single command",
			Args:  cobra.MinimumNArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return l(args[0]).Extend(cmd.Context(), toAny(args[1:]))
			},
		},
		&cobra.Command{
			Use:   "pop [key]",
			Short: "Remove and print the last element",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				v, ok, err := l(args[0]).Pop(cmd.Context())
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("list %q is empty", args[0])
				}
				fmt.Fprintln(cmd.OutOrStdout(), v)
				return nil
			},
		},
		&cobra.Command{
			Use:   "slice [key] [start] [stop]",
			Short: "Print elements in [start, stop); negatives count from the end",
			Args:  cobra.ExactArgs(3),
			RunE: func(cmd *cobra.Command, args []string) error {
				start, err := parseInt("start", args[1])
				if err != nil {
					return err
				}
				stop, err := parseInt("stop", args[2])
				if err != nil {
					return err
				}
				vs, err := l(args[0]).Slice(cmd.Context(), start, stop)
				if err != nil {
					return err
				}
				printLines(cmd.OutOrStdout(), vs)
				return nil
			},
		},
	)
	return c
}

func setCmd(a *app) *cobra.Command {
	c := &cobra.Command{Use: "set", Short: "Raw set operations"}
	s := func(key string) *container.Set { return container.NewSet(key, a.exec) }
	others := func(keys []string) []*container.Set {
		out := make([]*container.Set, len(keys))
		for i, k := range keys {
			out[i] = s(k)
		}
		return out
	}

	algebra := func(use, short string, op func(*container.Set, *cobra.Command, []*container.Set) ([]string, error)) *cobra.Command {
		return &cobra.Command{
			Use:   use + " [key] [other...]",
			Short: short,
			Args:  cobra.MinimumNArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				vs, err := op(s(args[0]), cmd, others(args[1:]))
				if err != nil {
					return err
				}
				printLines(cmd.OutOrStdout(), vs)
				return nil
			},
		}
	}

	c.AddCommand(
		&cobra.Command{
			Use:   "add [key] [member...]",
			Short: "Add members",
			Args:  cobra.MinimumNArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				n, err := s(args[0]).Add(cmd.Context(), toAny(args[1:])...)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "added %d\n", n)
				return nil
			},
		},
		&cobra.Command{
			Use:   "members [key]",
			Short: "Print every member",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				vs, err := s(args[0]).Members(cmd.Context())
				if err != nil {
					return err
				}
				printLines(cmd.OutOrStdout(), vs)
				return nil
			},
		},
		&cobra.Command{
			Use:   "has [key] [member]",
			Short: "Report whether member is in the set",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				ok, err := s(args[0]).Contains(cmd.Context(), args[1])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), ok)
				return nil
			},
		},
		algebra("inter", "Print members common to all sets",
			func(x *container.Set, cmd *cobra.Command, o []*container.Set) ([]string, error) {
				return x.InterMembers(cmd.Context(), o...)
			}),
		algebra("union", "Print members of any set",
			func(x *container.Set, cmd *cobra.Command, o []*container.Set) ([]string, error) {
				return x.UnionMembers(cmd.Context(), o...)
			}),
		algebra("diff", "Print members of the first set missing from the others",
			func(x *container.Set, cmd *cobra.Command, o []*container.Set) ([]string, error) {
				return x.DiffMembers(cmd.Context(), o...)
			}),
	)
	return c
}

func zsetCmd(a *app) *cobra.Command {
	c := &cobra.Command{Use: "zset", Short: "Raw sorted set operations"}
	z := func(key string) *container.SortedSet { return container.NewSortedSet(key, a.exec) }

	c.AddCommand(
		&cobra.Command{
			Use:   "add [key] [score] [member]",
			Short: "Add or rescore a member",
			Args:  cobra.ExactArgs(3),
			RunE: func(cmd *cobra.Command, args []string) error {
				score, err := parseFloat("score", args[1])
				if err != nil {
					return err
				}
				return z(args[0]).Add(cmd.Context(), args[2], score)
			},
		},
		&cobra.Command{
			Use:   "members [key]",
			Short: "Print members by ascending score",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				vs, err := z(args[0]).Members(cmd.Context())
				if err != nil {
					return err
				}
				printLines(cmd.OutOrStdout(), vs)
				return nil
			},
		},
		&cobra.Command{
			Use:   "score [key] [member]",
			Short: "Print the score of member",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				v, ok, err := z(args[0]).Score(cmd.Context(), args[1])
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("%q is not a member of %q", args[1], args[0])
				}
				fmt.Fprintln(cmd.OutOrStdout(), strconv.FormatFloat(v, 'f', -1, 64))
				return nil
			},
		},
		&cobra.Command{
			Use:   "between [key] [min] [max]",
			Short: "Print members with min <= score <= max",
			Args:  cobra.ExactArgs(3),
			RunE: func(cmd *cobra.Command, args []string) error {
				lo, err := parseFloat("min", args[1])
				if err != nil {
					return err
				}
				hi, err := parseFloat("max", args[2])
				if err != nil {
					return err
				}
				vs, err := z(args[0]).Between(cmd.Context(), lo, hi, container.Page{})
				if err != nil {
					return err
				}
				printLines(cmd.OutOrStdout(), vs)
				return nil
			},
		},
	)
	return c
}

func hashCmd(a *app) *cobra.Command {
	c := &cobra.Command{Use: "hash", Short: "Raw hash operations"}
	h := func(key string) *container.Hash { return container.NewHash(key, a.exec) }

	c.AddCommand(
		&cobra.Command{
			Use:   "set [key] [field] [value]",
			Short: "Set a field",
			Args:  cobra.ExactArgs(3),
			RunE: func(cmd *cobra.Command, args []string) error {
				return h(args[0]).Set(cmd.Context(), args[1], args[2])
			},
		},
		&cobra.Command{
			Use:   "get [key] [field]",
			Short: "Print a field",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				v, ok, err := h(args[0]).Get(cmd.Context(), args[1])
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("field %q not set in %q", args[1], args[0])
				}
				fmt.Fprintln(cmd.OutOrStdout(), v)
				return nil
			},
		},
		&cobra.Command{
			Use:   "all [key]",
			Short: "Print the hash",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				s, err := h(args[0]).Repr(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), s)
				return nil
			},
		},
		&cobra.Command{
			Use:   "del [key] [field...]",
			Short: "Delete fields",
			Args:  cobra.MinimumNArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				n, err := h(args[0]).Del(cmd.Context(), args[1:]...)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %d\n", n)
				return nil
			},
		},
	)
	return c
}
