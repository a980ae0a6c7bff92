package usecase

// WrapAs is exported for testing
var WrapAs = wrapAs
