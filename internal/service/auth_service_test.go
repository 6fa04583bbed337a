package service_test

import (
	"github.com/sakashimaa/webshop/internal/domain"
	"github.com/sakashimaa/webshop/internal/repository"
	"github.com/sakashimaa/webshop/internal/service"
)

func (s *IntegrationTestSuite) TestRegisterLogin_Success() {
	user, err := s.Auth.Register(s.Ctx, service.RegisterInput{
		Username: "kate",
		Password: "supersecretqwerty123",
		Email:    "kate@example.com",
	})
	s.Require().NoError(err)
	s.Require().NotZero(user.ID)
	s.Require().Empty(user.Permissions)
	s.Require().NotEqual("supersecretqwerty123", user.PasswordHash)

	token, logged, err := s.Auth.Login(s.Ctx, service.LoginInput{Username: "kate", Password: "supersecretqwerty123"})
	s.Require().NoError(err)
	s.Require().NotEmpty(token)
	s.Require().Equal(user.ID, logged.ID)

	actor, err := s.Auth.ResolveActor(s.Ctx, token)
	s.Require().NoError(err)
	s.Require().Equal(user.ID, actor.UserID)
}

func (s *IntegrationTestSuite) TestRegister_Duplicate_Failed() {
	in := service.RegisterInput{Username: "kate", Password: "supersecretqwerty123"}

	_, err := s.Auth.Register(s.Ctx, in)
	s.Require().NoError(err)

	_, err = s.Auth.Register(s.Ctx, in)
	s.Require().ErrorIs(err, repository.ErrUserAlreadyExists)
}

func (s *IntegrationTestSuite) TestLogin_WrongPassword_Failed() {
	_, err := s.Auth.Register(s.Ctx, service.RegisterInput{Username: "kate", Password: "supersecretqwerty123"})
	s.Require().NoError(err)

	_, _, err = s.Auth.Login(s.Ctx, service.LoginInput{Username: "kate", Password: "wrong-password"})
	s.Require().ErrorIs(err, service.ErrInvalidCredentials)

	_, _, err = s.Auth.Login(s.Ctx, service.LoginInput{Username: "nobody", Password: "wrong-password"})
	s.Require().ErrorIs(err, service.ErrInvalidCredentials)
}

func (s *IntegrationTestSuite) TestResolveActor_LoadsPermissions() {
	staff := s.seedUser("staff", domain.PermCourier)

	token, err := s.Tokens.Generate(staff.UserID)
	s.Require().NoError(err)

	actor, err := s.Auth.ResolveActor(s.Ctx, token)
	s.Require().NoError(err)
	s.Require().True(actor.Has(domain.PermCourier))

	anon, err := s.Auth.ResolveActor(s.Ctx, "garbage")
	s.Require().NoError(err)
	s.Require().False(anon.IsAuthenticated())
}
