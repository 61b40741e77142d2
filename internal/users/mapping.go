package users

import (
	"github.com/JaimeStill/promptchan/pkg/query"
	"github.com/JaimeStill/promptchan/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "users", "u").
	Project("id", "ID").
	Project("email", "Email").
	Project("username", "Username").
	Project("created_at", "CreatedAt")

// credentials extends projection with the stored digest for login checks.
var credentials = query.
	NewProjectionMap("public", "users", "u").
	Project("id", "ID").
	Project("email", "Email").
	Project("username", "Username").
	Project("created_at", "CreatedAt").
	Project("password_digest", "PasswordDigest")

type credential struct {
	User
	digest string
}

func scanUser(s repository.Scanner) (User, error) {
	var u User
	err := s.Scan(&u.ID, &u.Email, &u.Username, &u.CreatedAt)
	return u, err
}

func scanCredential(s repository.Scanner) (credential, error) {
	var c credential
	err := s.Scan(&c.ID, &c.Email, &c.Username, &c.CreatedAt, &c.digest)
	return c, err
}
