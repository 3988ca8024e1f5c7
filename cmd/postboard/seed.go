package main

import (
	"github.com/spf13/cobra"

	"postboard/internal/domain/auth"
)

func newSeedCmd(g *globals) *cobra.Command {
	var (
		admin       auth.RegisterRequest
		randomPosts bool
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the admin account and optional sample posts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := buildApp(ctx, g.cfg, g.log)
			if err != nil {
				return err
			}
			defer a.Close()

			user, created, err := a.auth.EnsureAdmin(ctx, admin)
			if err != nil {
				return err
			}
			g.log.Infow("admin ready", "user_id", user.ID, "email", user.Email, "created", created)

			if randomPosts {
				if err := a.posts.GenerateRandom(ctx, user.ID); err != nil {
					return err
				}
				g.log.Infow("sample posts created", "author_id", user.ID)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&admin.Nickname, "nickname", "admin", "admin nickname")
	cmd.Flags().StringVar(&admin.Email, "email", "admin@postboard.local", "admin email")
	cmd.Flags().StringVar(&admin.Password, "password", "admin123", "admin password (3 to 8 characters)")
	cmd.Flags().BoolVar(&randomPosts, "posts", false, "also generate sample posts for the admin")
	return cmd
}
