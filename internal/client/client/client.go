package client

import (
	"context"

	pb "github.com/dmitrijs2005/authkeeper/internal/proto"
)

type Client interface {
	Close() error
	Register(ctx context.Context, email, password string) (*pb.AuthResponse, error)
	Login(ctx context.Context, email, password string) (*pb.AuthResponse, error)
	RefreshTokens(ctx context.Context, refreshToken string) (*pb.AuthResponse, error)
	Profile(ctx context.Context) (*pb.User, error)
	SetTokens(accessToken, refreshToken string)
}
