package ports

import "github.com/sunridge-network/settled/internal/core/domain"

// RepoManager groups the repositories of all storage-backed collections in
// a single data structure.
type RepoManager interface {
	OrderRepository() domain.OrderRepository
	SunriseRepository() domain.SunriseRepository
	RewardRepository() domain.RewardRepository
	PriceRepository() domain.PriceRepository

	Close()
}
