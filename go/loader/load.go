package loader

import (
	"github.com/pkg/errors"

	"github.com/lunixbochs/readbin/go/logflags"
	"github.com/lunixbochs/readbin/go/models"
)

// LoadFile maps path and loads it. The returned loader owns the mapping
// and releases it on Close.
func LoadFile(path string) (models.Loader, error) {
	img, err := models.OpenImage(path)
	if err != nil {
		return nil, err
	}
	l, err := Load(img)
	if err != nil {
		img.Close()
		return nil, errors.Wrap(err, path)
	}
	return l, nil
}

func LoadBytes(p []byte) (models.Loader, error) {
	return Load(models.NewImage("", p))
}

// Load picks a format by magic and decodes every table up front.
func Load(img *models.Image) (models.Loader, error) {
	log := logflags.LoaderLogger()
	buf := img.Bytes()
	var l models.Loader
	switch {
	case MatchElf(buf):
		e, err := NewElfLoader(img)
		if err != nil {
			return nil, err
		}
		l = e
	case MatchPe(buf):
		p, err := NewPeLoader(img)
		if err != nil {
			return nil, err
		}
		l = p
	default:
		return nil, errors.WithStack(ErrUnknownMagic)
	}
	log.Debugf("loaded %s %s image, entry 0x%x", l.Format(), l.Arch(), l.Entry())
	for _, w := range l.Warnings() {
		log.WithError(w).Warn("recoverable table error")
	}
	return l, nil
}
