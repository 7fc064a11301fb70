package parser

var imageExtensions = map[string]bool{
	"jpg": true, "jpeg": true, "png": true, "gif": true,
	"bmp": true, "tiff": true, "img": true,
}

type imageHandler struct{}

func (imageHandler) Name() string { return "image" }

func (imageHandler) CanParse(ext string, _ []byte) bool { return imageExtensions[ext] }

func (imageHandler) Parse(_ []byte, filename string, res *Result, _ Options) error {
	res.DetectedFormat = FormatImage
	res.notef("Image files are not supported for data parsing: %s", filename)
	return nil
}

type fitsHandler struct{}

func (fitsHandler) Name() string { return "fits" }

func (fitsHandler) CanParse(ext string, _ []byte) bool { return ext == "fits" || ext == "fit" }

func (fitsHandler) Parse(_ []byte, _ string, res *Result, _ Options) error {
	res.DetectedFormat = FormatFITS
	res.notef("FITS binary format detected; binary table parsing is not implemented")
	return nil
}
