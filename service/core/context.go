package core

import (
	"context"
)

type ServiceContext struct {
	Context  context.Context
	Provider MarketDataProvider
	Store    ResultStore // nil when persistence is disabled
	Settings Settings
}

type Settings struct {
	InputPath       string
	BenchmarkTicker string
	Workers         int
	Resolvers       []SharesResolver // DefaultSharesResolvers when empty
}

func (sc *ServiceContext) resolvers() []SharesResolver {
	if len(sc.Settings.Resolvers) == 0 {
		return DefaultSharesResolvers
	}
	return sc.Settings.Resolvers
}
