package slack

// CachedName returns the cached display name of userID, if any
func (c *Client) CachedName(userID string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.cache[userID]
	return entry.name, ok
}
