package interfaces

import "github.com/m-mizutani/goerr/v2"

// ErrLinkConflict is returned by LinkRepository.Create when a link already exists
// for the chat thread or the tracker card
var ErrLinkConflict = goerr.New("link already exists")
