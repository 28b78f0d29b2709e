// Package cache provides a small generic LRU cache with loader support.
//
// The pipeline uses it to keep decoded source images around while several
// tasks look at the same file (dimension probing, ninepatch mining and
// rendering at more than one scale).
//
//	c := cache.New[string, *image.ImageBuf](32)
//	img, err := c.GetOrLoad(path, func() (*image.ImageBuf, error) {
//	    return image.LoadImage(path)
//	})
//
// Cache is safe for concurrent use and must not be copied after creation.
package cache
