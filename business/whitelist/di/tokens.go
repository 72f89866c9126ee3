// Package di contains dependency injection tokens for the whitelist context.
package di

import (
	"github.com/fd1az/whitelist-dapp/business/whitelist/app"
	"github.com/fd1az/whitelist-dapp/business/whitelist/infra/contract"
	"github.com/fd1az/whitelist-dapp/internal/di"
)

// Public service tokens - exposed to other modules
var (
	Service = di.NewToken[*app.Service]("whitelist.Service")

	// Presenter may be registered by main before the module; the console
	// presenter is used otherwise.
	Presenter = di.NewToken[app.Presenter]("whitelist.Presenter")
)

// Private dependency tokens - internal to whitelist module
var (
	Contract = di.NewToken[*contract.Whitelist]("whitelist:contract")
)

func GetService(c di.ServiceRegistry) *app.Service {
	return di.GetToken(c, Service)
}

func GetPresenter(c di.ServiceRegistry) app.Presenter {
	return di.GetToken(c, Presenter)
}

func GetContract(c di.ServiceRegistry) *contract.Whitelist {
	return di.GetToken(c, Contract)
}
