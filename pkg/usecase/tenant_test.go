package usecase_test

import (
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/relayboard/pkg/domain/model"
	"github.com/secmon-lab/relayboard/pkg/usecase"
)

func TestTenantRegistry(t *testing.T) {
	a := &usecase.Tenant{Account: &model.Account{ID: "team-a"}}
	b := &usecase.Tenant{Account: &model.Account{ID: "team-b"}}
	reg := usecase.NewTenantRegistry(a, b)

	gt.Number(t, reg.Len()).Equal(2)
	got, err := reg.Resolve("team-b")
	gt.NoError(t, err).Required()
	gt.Value(t, got).Equal(b)

	_, err = reg.Resolve("team-z")
	gt.Error(t, err).Is(usecase.ErrTenantNotFound)

	t.Run("Replace swaps the whole set", func(t *testing.T) {
		c := &usecase.Tenant{Account: &model.Account{ID: "team-c"}}
		reg.Replace([]*usecase.Tenant{c})

		gt.Number(t, reg.Len()).Equal(1)
		_, err := reg.Resolve("team-a")
		gt.Error(t, err).Is(usecase.ErrTenantNotFound)
		got, err := reg.Resolve("team-c")
		gt.NoError(t, err).Required()
		gt.Value(t, got.ID()).Equal("team-c")
	})

	t.Run("List keeps order and later duplicates win", func(t *testing.T) {
		first := &usecase.Tenant{Account: &model.Account{ID: "x", Name: "first"}}
		second := &usecase.Tenant{Account: &model.Account{ID: "y"}}
		dup := &usecase.Tenant{Account: &model.Account{ID: "x", Name: "dup"}}
		reg := usecase.NewTenantRegistry(first, second, dup)

		list := reg.List()
		gt.Array(t, list).Length(2)
		gt.Value(t, list[0].Account.Name).Equal("dup")
		gt.Value(t, list[1].ID()).Equal("y")
	})
}

func TestBuildTenantRegistry(t *testing.T) {
	accounts := model.NewAccountRegistry()
	accounts.Register(&model.Account{ID: "team-a"})
	accounts.Register(&model.Account{ID: "team-b"})

	t.Run("builds every account", func(t *testing.T) {
		reg, err := usecase.BuildTenantRegistry(accounts, func(account *model.Account) (*usecase.Tenant, error) {
			return &usecase.Tenant{Account: account, Chat: newFakeChat(), Tracker: &fakeTracker{}}, nil
		})
		gt.NoError(t, err).Required()
		gt.Number(t, reg.Len()).Equal(2)
	})

	t.Run("factory error aborts", func(t *testing.T) {
		_, err := usecase.BuildTenantRegistry(accounts, func(account *model.Account) (*usecase.Tenant, error) {
			return nil, goerr.New("bad token")
		})
		gt.Value(t, err).NotNil()
	})
}
