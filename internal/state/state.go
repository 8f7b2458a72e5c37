package state

import (
	"errors"
	"sync"
	"time"

	"page-server/internal/page"
	"page-server/internal/types"
)

// ErrNotInitialized is returned before Init has parsed the page
var ErrNotInitialized = errors.New("page state not initialized")

// ServerState holds the global server state
type ServerState struct {
	Page      *types.PageInfo `json:"page"`
	StartedAt time.Time       `json:"startedAt"`
	markup    []byte
	mutex     sync.RWMutex
}

var globalState = &ServerState{}

// Init parses markup and stores the result as the served page
func Init(markup []byte) error {
	info, err := page.Parse(markup)
	if err != nil {
		return err
	}

	globalState.mutex.Lock()
	defer globalState.mutex.Unlock()
	globalState.Page = info
	globalState.markup = markup
	globalState.StartedAt = time.Now()
	return nil
}

// GetPageInfo returns a copy of the parsed page
func GetPageInfo() (types.PageInfo, error) {
	globalState.mutex.RLock()
	defer globalState.mutex.RUnlock()

	if globalState.Page == nil {
		return types.PageInfo{}, ErrNotInitialized
	}
	info := *globalState.Page
	info.Features = append([]types.Feature(nil), globalState.Page.Features...)
	return info, nil
}

// GetMarkup returns the markup passed to Init
func GetMarkup() ([]byte, error) {
	globalState.mutex.RLock()
	defer globalState.mutex.RUnlock()

	if globalState.markup == nil {
		return nil, ErrNotInitialized
	}
	return globalState.markup, nil
}

// GetServerState returns the full server state
func GetServerState() map[string]interface{} {
	globalState.mutex.RLock()
	defer globalState.mutex.RUnlock()

	result := map[string]interface{}{
		"initialized": globalState.Page != nil,
	}
	if globalState.Page != nil {
		result["startedAt"] = globalState.StartedAt
		result["uptimeSeconds"] = int64(time.Since(globalState.StartedAt).Seconds())
		result["pageSize"] = globalState.Page.Size
		result["featureCount"] = len(globalState.Page.Features)
	}
	return result
}

func reset() {
	globalState.mutex.Lock()
	defer globalState.mutex.Unlock()
	globalState.Page = nil
	globalState.markup = nil
	globalState.StartedAt = time.Time{}
}
