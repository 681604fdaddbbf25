// Package iam maps identity and access management operations onto the
// backend's iam/* endpoints. Backend failures are returned unchanged as
// *apiclient.APIError.
package iam

import (
	"github.com/jrsteele09/kogase-admin/apiclient"
	"github.com/pkg/errors"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 10
)

type Service struct {
	client *apiclient.Client
}

func NewService(client *apiclient.Client) (*Service, error) {
	if client == nil {
		return nil, errors.New("[iam.NewService] client is required")
	}
	return &Service{client: client}, nil
}

func path(op, base string, segments ...string) (string, error) {
	p, err := apiclient.ResourcePath(base, segments...)
	if err != nil {
		return "", errors.Wrap(err, op)
	}
	return p, nil
}
