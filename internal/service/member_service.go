package service

import (
	"context"

	"github.com/cwrk-planet/chat-service/internal/domain"
	"github.com/cwrk-planet/chat-service/internal/postgres"
)

type MemberService struct {
	rooms       *postgres.RoomRepository
	members     *postgres.MemberRepository
	preferences *postgres.PreferenceRepository
}

func NewMemberService(rooms *postgres.RoomRepository, members *postgres.MemberRepository, preferences *postgres.PreferenceRepository) *MemberService {
	return &MemberService{rooms: rooms, members: members, preferences: preferences}
}

func (s *MemberService) ListMembers(ctx context.Context, roomID string) ([]domain.User, error) {
	return s.members.ListByRoom(ctx, roomID)
}

func (s *MemberService) Preference(ctx context.Context, userID, roomID string) (domain.Preference, error) {
	return s.preferences.Get(ctx, userID, roomID)
}

func (s *MemberService) RoomName(ctx context.Context, roomID string) (string, error) {
	room, err := s.rooms.Get(ctx, roomID)
	if err != nil {
		return "", err
	}
	return room.Name, nil
}
