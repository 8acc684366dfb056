package auth

import (
	"github.com/jrsteele09/regulus-console/internal/errors"
	pkgerrors "github.com/pkg/errors"
)

var (
	InvalidCredentialsErr = pkgerrors.Wrap(errors.ErrInvalidInput, "invalid credentials")
	InvalidSignupErr      = pkgerrors.Wrap(errors.ErrInvalidInput, "invalid signup payload")
	MissingTokenErr       = pkgerrors.Wrap(errors.ErrInvalidResponse, "login response carried no token")
)
