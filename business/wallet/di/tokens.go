// Package di contains dependency injection tokens for the wallet context.
package di

import (
	"github.com/fd1az/whitelist-dapp/business/wallet/app"
	"github.com/fd1az/whitelist-dapp/internal/di"
)

// Public service tokens - exposed to other modules
var (
	Connector = di.NewToken[*app.Connector]("wallet.Connector")
)

func GetConnector(c di.ServiceRegistry) *app.Connector {
	return di.GetToken(c, Connector)
}
