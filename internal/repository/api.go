package repository

import (
	"context"

	"github.com/noah-isme/academic-tracker/pkg/apiclient"
)

// apiDoer is the slice of apiclient.Client the repositories depend on.
type apiDoer interface {
	Do(ctx context.Context, req apiclient.Request, out interface{}) error
}
