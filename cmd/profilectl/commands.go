package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"profilehub/internal/appstate"
	"profilehub/internal/gateway"
	"profilehub/internal/profile"
)

func newListCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all profiles",
		Args:  cobra.NoArgs,
		RunE: withSession(flags, true, func(_ context.Context, s *session, _ []string) error {
			s.view.List(s.state.State())
			return nil
		}),
	}
}

func newShowCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show [id]",
		Short: "Show one profile (the current one when no id is given)",
		Args:  cobra.MaximumNArgs(1),
		RunE: withSession(flags, true, func(_ context.Context, s *session, args []string) error {
			if len(args) == 1 {
				if err := s.state.SelectCurrent(args[0]); err != nil {
					s.view.NotFound(args[0])
					return notFoundErr(args[0])
				}
			}
			p, ok := s.state.Current()
			if !ok {
				s.view.NotFound("")
				return codeError(exitFailure, "")
			}
			s.view.Detail(p)
			return nil
		}),
	}
}

// formFlags 為 create 與 edit 共用的表單欄位。
type formFlags struct {
	first    string
	last     string
	email    string
	age      int
	clearAge bool
}

func (f *formFlags) bind(fs *pflag.FlagSet) {
	fs.StringVar(&f.first, "first", "", "First name")
	fs.StringVar(&f.last, "last", "", "Last name")
	fs.StringVar(&f.email, "email", "", "Email address")
	fs.IntVar(&f.age, "age", 0, "Age (0-99)")
}

// apply 只覆蓋有指定的旗標，未指定者保留 p 原值。
func (f *formFlags) apply(fs *pflag.FlagSet, p profile.Profile) profile.Profile {
	if fs.Changed("first") {
		p.FirstName = f.first
	}
	if fs.Changed("last") {
		p.LastName = f.last
	}
	if fs.Changed("email") {
		p.Email = f.email
	}
	if fs.Changed("age") {
		p.Age = profile.Int(f.age)
	}
	if f.clearAge {
		p.Age = nil
	}
	return p
}

// submit 於邊界檢核後送出，成功時輸出結果。
func submit(ctx context.Context, s *session, p profile.Profile) error {
	if err := s.validateAtEdge(p); err != nil {
		return err
	}
	saved, err := s.state.Save(ctx, p)
	if err != nil {
		return s.failure(err)
	}
	s.view.Saved(saved)
	s.view.Detail(saved)
	return nil
}

func newCreateCmd(flags *rootFlags) *cobra.Command {
	var form formFlags
	cmd := &cobra.Command{
		Use:   "create --first NAME --last NAME --email ADDR [--age N]",
		Short: "Create a profile",
		Args:  cobra.NoArgs,
	}
	form.bind(cmd.Flags())
	cmd.RunE = withSession(flags, true, func(ctx context.Context, s *session, _ []string) error {
		return submit(ctx, s, form.apply(cmd.Flags(), profile.Profile{}))
	})
	return cmd
}

func newEditCmd(flags *rootFlags) *cobra.Command {
	var form formFlags
	cmd := &cobra.Command{
		Use:   "edit <id> [--first NAME] [--last NAME] [--email ADDR] [--age N | --clear-age]",
		Short: "Edit a profile; only the given fields change",
		Args:  cobra.ExactArgs(1),
	}
	form.bind(cmd.Flags())
	cmd.Flags().BoolVar(&form.clearAge, "clear-age", false, "Remove the stored age")
	cmd.MarkFlagsMutuallyExclusive("age", "clear-age")
	cmd.RunE = withSession(flags, true, func(ctx context.Context, s *session, args []string) error {
		existing, ok := s.state.State().Find(args[0])
		if !ok {
			s.view.NotFound(args[0])
			return notFoundErr(args[0])
		}
		if err := submit(ctx, s, form.apply(cmd.Flags(), existing)); err != nil {
			return err
		}
		// 遠端的部分更新不會清除既有 age
		if form.clearAge {
			if cur, ok := s.state.Current(); ok && cur.Age != nil {
				s.view.Notice(fmt.Sprintf("age was kept (%d): the %s backend does not clear a stored age", *cur.Age, s.gw.LastBackend()))
			}
		}
		return nil
	})
	return cmd
}

func newDeleteCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a profile",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(flags, true, func(ctx context.Context, s *session, args []string) error {
			if err := s.state.Delete(ctx, args[0]); err != nil {
				if s.state.State().ErrorKind == appstate.KindNotFound {
					s.view.NotFound(args[0])
					return notFoundErr(args[0])
				}
				return s.failure(err)
			}
			s.view.Deleted(args[0])
			return nil
		}),
	}
}

func newHealthCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Probe the profile API and report which backend would serve requests",
		Args:  cobra.NoArgs,
		RunE: withSession(flags, false, func(ctx context.Context, s *session, _ []string) error {
			backend := s.backendName(ctx)
			s.view.Health(s.cfg.Client.APIURL, backend == gateway.BackendRemote, backend)
			return nil
		}),
	}
}
