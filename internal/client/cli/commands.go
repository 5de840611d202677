package cli

import (
	"context"

	"github.com/dmitrijs2005/authkeeper/internal/client/client"
	pb "github.com/dmitrijs2005/authkeeper/internal/proto"
	"github.com/spf13/cobra"
)

func (a *App) newRegisterCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			email, password, err := a.credentials(email, password)
			if err != nil {
				return err
			}
			return a.withClient(cmd.Context(), func(ctx context.Context, c client.Client) error {
				resp, err := c.Register(ctx, email, password)
				if err != nil {
					return err
				}
				return a.printJSON(resp)
			})
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password (prompted when empty)")
	return cmd
}

func (a *App) newLoginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and print a fresh token pair",
		RunE: func(cmd *cobra.Command, _ []string) error {
			email, password, err := a.credentials(email, password)
			if err != nil {
				return err
			}
			return a.withClient(cmd.Context(), func(ctx context.Context, c client.Client) error {
				resp, err := c.Login(ctx, email, password)
				if err != nil {
					return err
				}
				return a.printJSON(resp)
			})
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password (prompted when empty)")
	return cmd
}

func (a *App) newRefreshCmd() *cobra.Command {
	var token string

	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Exchange a refresh token for a new token pair",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withClient(cmd.Context(), func(ctx context.Context, c client.Client) error {
				resp, err := c.RefreshTokens(ctx, token)
				if err != nil {
					return err
				}
				return a.printJSON(resp)
			})
		},
	}

	cmd.Flags().StringVarP(&token, "token", "t", "", "refresh token")
	_ = cmd.MarkFlagRequired("token")
	return cmd
}

func (a *App) newProfileCmd() *cobra.Command {
	var token, refreshToken string

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show the account an access token belongs to",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withClient(cmd.Context(), func(ctx context.Context, c client.Client) error {
				c.SetTokens(token, refreshToken)
				user, err := c.Profile(ctx)
				if err != nil {
					return err
				}
				return a.printJSON(&pb.ProfileResponse{User: user})
			})
		},
	}

	cmd.Flags().StringVarP(&token, "token", "t", "", "access token")
	cmd.Flags().StringVarP(&refreshToken, "refresh-token", "r", "", "refresh token used when the access token is rejected")
	_ = cmd.MarkFlagRequired("token")
	return cmd
}
