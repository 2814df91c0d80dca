package smocks

import (
	"context"

	"github.com/ferbator/shortlink/internal/models"
	"github.com/ferbator/shortlink/internal/services"
	"github.com/stretchr/testify/mock"
)

type LinkServiceMock struct {
	mock.Mock
}

func (l *LinkServiceMock) Create(
	ctx context.Context,
	params services.CreateLinkParams,
) (*models.Link, *models.User, error) {
	args := l.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2) //nolint:wrapcheck,errcheck
	}
	return args.Get(0).(*models.Link), args.Get(1).(*models.User), args.Error(2) //nolint:wrapcheck,errcheck
}

func (l *LinkServiceMock) Resolve(ctx context.Context, shortCode string) (*models.Link, error) {
	args := l.Called(ctx, shortCode)
	if args.Get(0) == nil {
		return nil, args.Error(1) //nolint:wrapcheck,errcheck
	}
	return args.Get(0).(*models.Link), args.Error(1) //nolint:wrapcheck,errcheck
}

func (l *LinkServiceMock) EditClickLimit(
	ctx context.Context,
	userUUID, shortCode string,
	newLimit int,
) (*models.Link, error) {
	args := l.Called(ctx, userUUID, shortCode, newLimit)
	if args.Get(0) == nil {
		return nil, args.Error(1) //nolint:wrapcheck,errcheck
	}
	return args.Get(0).(*models.Link), args.Error(1) //nolint:wrapcheck,errcheck
}

func (l *LinkServiceMock) Delete(ctx context.Context, userUUID, shortCode string) error {
	args := l.Called(ctx, userUUID, shortCode)
	return args.Error(0) //nolint:wrapcheck,errcheck
}
