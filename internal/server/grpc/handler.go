package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	pb "github.com/dmitrijs2005/authkeeper/internal/proto"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func (s *GRPCServer) Register(ctx context.Context, req *pb.RegisterRequest) (*pb.AuthResponse, error) {

	s.logger.Info(ctx, "Registration request")

	result, err := s.auth.Register(ctx, req.GetEmail(), req.GetPassword())
	if err != nil {
		return nil, s.toStatus(ctx, "register", err)
	}

	s.logger.Info(ctx, "Registered", "account_id", result.User.ID)
	return toAuthResponse(result), nil
}

func (s *GRPCServer) Login(ctx context.Context, req *pb.LoginRequest) (*pb.AuthResponse, error) {

	result, err := s.auth.Login(ctx, req.GetEmail(), req.GetPassword())
	if err != nil {
		return nil, s.toStatus(ctx, "login", err)
	}

	return toAuthResponse(result), nil
}

func (s *GRPCServer) RefreshTokens(ctx context.Context, req *pb.RefreshTokensRequest) (*pb.AuthResponse, error) {

	result, err := s.auth.RefreshTokens(ctx, req.GetRefreshToken())
	if err != nil {
		return nil, s.toStatus(ctx, "refresh", err)
	}

	return toAuthResponse(result), nil
}

func (s *GRPCServer) Profile(ctx context.Context, _ *pb.ProfileRequest) (*pb.ProfileResponse, error) {

	accountID, ok := accountIDFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, common.ErrMissingToken.Error())
	}

	user, err := s.auth.Profile(ctx, accountID)
	if err != nil {
		return nil, s.toStatus(ctx, "profile", err)
	}

	return &pb.ProfileResponse{User: toUser(user)}, nil
}

// toStatus maps workflow errors onto gRPC codes. Unclassified errors are
// logged and reported without details.
func (s *GRPCServer) toStatus(ctx context.Context, op string, err error) error {
	switch {
	case errors.Is(err, common.ErrAccountExists):
		return status.Error(codes.AlreadyExists, common.ErrAccountExists.Error())
	case errors.Is(err, common.ErrInvalidEmail),
		errors.Is(err, common.ErrWeakPassword),
		errors.Is(err, common.ErrPasswordTooLong):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrInvalidCredentials),
		errors.Is(err, common.ErrMissingToken),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrAccountNotFound):
		return status.Error(codes.Unauthenticated, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "canceled")
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "deadline exceeded")
	}

	s.logger.Error(ctx, "request failed", "op", op, "error", err)
	return status.Error(codes.Internal, common.ErrorInternal.Error())
}

func toUser(u models.UserProjection) *pb.User {
	return &pb.User{Id: u.ID, Email: u.Email, IsAdmin: u.IsAdmin}
}

func toAuthResponse(r *models.AuthResult) *pb.AuthResponse {
	return &pb.AuthResponse{
		User:         toUser(r.User),
		AccessToken:  r.AccessToken,
		RefreshToken: r.RefreshToken,
	}
}
