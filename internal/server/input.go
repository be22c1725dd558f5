package server

import (
	"errors"
	"fmt"
	"image"

	"github.com/ironsheep/bahtinov-focus-mcp/internal/hough"
	"github.com/ironsheep/bahtinov-focus-mcp/internal/imaging"
)

// Edge extraction methods accepted for pixel input.
const (
	edgeMethodThreshold = "threshold"
	edgeMethodCanny     = "canny"
)

const (
	defaultLevel     = 128
	defaultCannyLow  = 50
	defaultCannyHigh = 150
)

type pointArg struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type regionArg struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// imageInput is the image part shared by the detection tools. Exactly one
// of Edges, Points or Pixels must be given.
type imageInput struct {
	Width  int `json:"width"`
	Height int `json:"height"`

	// Edges is a base64 row-major buffer; every non-zero byte is an edge.
	Edges []byte `json:"edges,omitempty"`

	// Points lists edge pixels.
	Points []pointArg `json:"points,omitempty"`

	// Pixels is a base64 row-major 8-bit intensity buffer. It is turned
	// into edges with EdgeMethod.
	Pixels     []byte  `json:"pixels,omitempty"`
	EdgeMethod string  `json:"edge_method,omitempty"`
	Level      *int    `json:"level,omitempty"`
	Blur       float64 `json:"blur,omitempty"`
	CannyLow   int     `json:"canny_low,omitempty"`
	CannyHigh  int     `json:"canny_high,omitempty"`

	// Region restricts detection to part of the image. Coordinates in the
	// result are relative to its top-left corner.
	Region *regionArg `json:"region,omitempty"`

	MaxTheta          *int `json:"max_theta,omitempty"`
	NeighbourhoodSize *int `json:"neighbourhood_size,omitempty"`
}

// edgeImage is a resolved edge buffer ready for voting.
type edgeImage struct {
	edges  []uint8
	width  int
	height int

	// origin is the region's top-left corner in the source image.
	origin image.Point

	// dropped counts input points that fell outside the image.
	dropped int
}

// resolve converts the input into an edge buffer.
func (in *imageInput) resolve() (*edgeImage, error) {
	given := 0
	for _, ok := range []bool{len(in.Edges) > 0, len(in.Points) > 0, len(in.Pixels) > 0} {
		if ok {
			given++
		}
	}
	if given != 1 {
		return nil, errors.New("exactly one of edges, points or pixels is required")
	}
	if in.Width <= 0 || in.Height <= 0 {
		return nil, fmt.Errorf("invalid dimensions %dx%d", in.Width, in.Height)
	}

	var (
		img     *image.Gray
		dropped int
		err     error
	)
	switch {
	case len(in.Edges) > 0:
		img, err = imaging.GrayFromBuffer(in.Edges, in.Width, in.Height)
	case len(in.Points) > 0:
		points := make([]image.Point, len(in.Points))
		for i, p := range in.Points {
			points[i] = image.Pt(p.X, p.Y)
		}
		var buf []uint8
		buf, dropped = imaging.PointsToBuffer(points, in.Width, in.Height)
		img, err = imaging.GrayFromBuffer(buf, in.Width, in.Height)
	default:
		img, err = imaging.GrayFromBuffer(in.Pixels, in.Width, in.Height)
	}
	if err != nil {
		return nil, err
	}

	var origin image.Point
	if in.Region != nil {
		rect := image.Rect(in.Region.X1, in.Region.Y1, in.Region.X2, in.Region.Y2)
		if img, err = imaging.Crop(img, rect); err != nil {
			return nil, err
		}
		origin = rect.Min
	}

	if len(in.Pixels) > 0 {
		if img, err = in.extractEdges(img); err != nil {
			return nil, err
		}
	}

	return &edgeImage{
		edges:   imaging.EdgeBuffer(img),
		width:   img.Bounds().Dx(),
		height:  img.Bounds().Dy(),
		origin:  origin,
		dropped: dropped,
	}, nil
}

func (in *imageInput) extractEdges(img *image.Gray) (*image.Gray, error) {
	switch in.EdgeMethod {
	case "", edgeMethodThreshold:
		level := defaultLevel
		if in.Level != nil {
			level = *in.Level
		}
		if level < 0 || level > 255 {
			return nil, fmt.Errorf("level must be in [0, 255], got %d", level)
		}
		if in.Blur < 0 {
			return nil, fmt.Errorf("blur must not be negative, got %.2f", in.Blur)
		}
		return imaging.Binarize(img, uint8(level), in.Blur), nil
	case edgeMethodCanny:
		low, high := in.CannyLow, in.CannyHigh
		if low == 0 {
			low = defaultCannyLow
		}
		if high == 0 {
			high = defaultCannyHigh
		}
		if low > high {
			return nil, fmt.Errorf("canny_low (%d) must not exceed canny_high (%d)", low, high)
		}
		return imaging.DetectEdges(img, low, high), nil
	default:
		return nil, fmt.Errorf("unknown edge_method %q: use %q or %q", in.EdgeMethod, edgeMethodThreshold, edgeMethodCanny)
	}
}

// houghConfig applies the per-request overrides to the server settings.
func (s *Server) houghConfig(in *imageInput) (hough.Config, error) {
	cfg := s.cfg.Hough()
	if in.MaxTheta != nil {
		cfg.MaxTheta = *in.MaxTheta
	}
	if in.NeighbourhoodSize != nil {
		cfg.NeighbourhoodSize = *in.NeighbourhoodSize
	}
	return cfg, cfg.Validate()
}

// prepare validates the Hough settings and resolves the edge image. The
// image size is checked against the server limits before anything is
// allocated, and the histogram size before voting.
func (s *Server) prepare(in *imageInput) (hough.Config, *edgeImage, error) {
	cfg, err := s.houghConfig(in)
	if err != nil {
		return cfg, nil, err
	}
	if err := s.cfg.CheckImageSize(in.Width, in.Height); err != nil {
		return cfg, nil, err
	}
	edges, err := in.resolve()
	if err != nil {
		return cfg, nil, err
	}
	if cells := hough.HistogramCells(edges.width, edges.height, cfg); cells > s.cfg.MaxHistogramCells {
		return cfg, nil, fmt.Errorf("histogram of %d cells too large (limit %d): lower max_theta or crop with region",
			cells, s.cfg.MaxHistogramCells)
	}
	return cfg, edges, nil
}

// checkScale rejects output scales EncodePNG would refuse, before any voting.
func checkScale(scale float64) error {
	if scale < 0 || scale > imaging.MaxScale {
		return fmt.Errorf("scale must be in [0, %.0f], got %.2f", imaging.MaxScale, scale)
	}
	return nil
}

// threshold returns the requested vote threshold or the configured default.
// Zero or below means automatic.
func (s *Server) threshold(requested *int) int {
	if requested != nil {
		return *requested
	}
	return s.cfg.DefaultThreshold
}
