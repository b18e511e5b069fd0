package repository

import "github.com/M0hammadUsman/campusboard/internal/domain"

var _ domain.Store = (*Repository)(nil)

type Repository struct {
	*ConversationRepository
	*MessageRepository
	*ProfileRepository
	*PostRepository
	*DB
}

func New(db *DB) *Repository {
	return &Repository{
		ConversationRepository: NewConversationRepository(db),
		MessageRepository:      NewMessageRepository(db),
		ProfileRepository:      NewProfileRepository(db),
		PostRepository:         NewPostRepository(db),
		DB:                     db,
	}
}
