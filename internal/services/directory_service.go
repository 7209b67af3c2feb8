package services

import (
	"context"

	"github.com/evanvp/SoMapBack/internal/models"
)

type peerLister interface {
	ListAll(ctx context.Context) ([]models.User, error)
}

// DirectoryService produces the "who is around me" snapshot that feeds the
// map screen.
type DirectoryService struct {
	userRepo peerLister
}

func NewDirectoryService(userRepo peerLister) *DirectoryService {
	return &DirectoryService{userRepo: userRepo}
}

// FilterActivePeers keeps users that are someone else, online, and have a
// known position, preserving the input order. Records missing either field
// are treated as excluded.
func FilterActivePeers(users []models.User, selfID int64) []models.User {
	peers := make([]models.User, 0, len(users))
	for _, user := range users {
		if user.ID == selfID {
			continue
		}
		if !user.Online || !user.Locatable() {
			continue
		}
		peers = append(peers, user)
	}
	return peers
}

func (s *DirectoryService) ListActivePeers(
	ctx context.Context,
	selfID int64,
) ([]models.User, error) {
	users, err := s.userRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	peers := FilterActivePeers(users, selfID)
	for i := range peers {
		peers[i].Email = ""
		peers[i].PasswordHash = ""
	}

	return peers, nil
}
