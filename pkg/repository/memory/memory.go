package memory

import (
	"github.com/secmon-lab/relayboard/pkg/domain/interfaces"
)

// Repository is an alias for Memory to match the pattern
type Repository = Memory

type Memory struct {
	link *linkRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		link: newLinkRepository(),
	}
}

func (m *Memory) Link() interfaces.LinkRepository {
	return m.link
}

func (m *Memory) Close() error {
	return nil
}
