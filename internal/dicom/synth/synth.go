// Package synth writes small, valid DICOM files for exercising the organizer.
package synth

import (
	"fmt"
	"hash/fnv"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"sort"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/frame"
	"github.com/suyashkumar/dicom/pkg/tag"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	// MR Image Storage
	mrImageStorage         = "1.2.840.10008.5.1.4.1.1.4"
	explicitVRLittleEndian = "1.2.840.10008.1.2.1"

	frameWidth  = 64
	frameHeight = 64
)

// SeriesSpec describes one synthetic series.
// Empty SeriesUID, SeriesNumber or Description leaves that tag out of the files
type SeriesSpec struct {
	PatientName  string
	SeriesUID    string
	SeriesNumber string
	Description  string
	Images       int

	// FilePattern is a fmt pattern taking the 1-based image index (default "IMG%04d.dcm")
	FilePattern string
}

// WriteSeries writes spec.Images files into dir and returns their paths in order
func WriteSeries(dir string, spec SeriesSpec) ([]string, error) {
	if spec.Images <= 0 {
		return nil, fmt.Errorf("number of images must be > 0")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create series directory: %w", err)
	}

	pattern := spec.FilePattern
	if pattern == "" {
		pattern = "IMG%04d.dcm"
	}

	paths := make([]string, 0, spec.Images)
	for i := 1; i <= spec.Images; i++ {
		path := filepath.Join(dir, fmt.Sprintf(pattern, i))
		if err := writeImage(path, spec, i); err != nil {
			return nil, fmt.Errorf("write image %d: %w", i, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// WriteCorrupt writes a file that carries a DICOM name but no DICOM content
func WriteCorrupt(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte("this is not a DICOM file\x00\x01\x02"), 0644)
}

func writeImage(path string, spec SeriesSpec, index int) error {
	sopInstanceUID := deterministicUID(fmt.Sprintf("%s_%s_%d", spec.SeriesUID, spec.Description, index))

	nativeFrame := frame.NewNativeFrame[uint8](8, frameHeight, frameWidth, frameWidth*frameHeight, 1)
	for i := range nativeFrame.RawData {
		nativeFrame.RawData[i] = uint8((i*7 + index) % 128)
	}
	drawTextOnFrame8(nativeFrame, frameWidth, frameHeight, fmt.Sprintf("File %d/%d", index, spec.Images))

	elements := []*dicom.Element{
		mustNewElement(tag.MediaStorageSOPClassUID, []string{mrImageStorage}),
		mustNewElement(tag.MediaStorageSOPInstanceUID, []string{sopInstanceUID}),
		mustNewElement(tag.TransferSyntaxUID, []string{explicitVRLittleEndian}),
		mustNewElement(tag.SOPClassUID, []string{mrImageStorage}),
		mustNewElement(tag.SOPInstanceUID, []string{sopInstanceUID}),
		mustNewElement(tag.Modality, []string{"MR"}),
		mustNewElement(tag.PatientName, []string{spec.PatientName}),
		mustNewElement(tag.PatientID, []string{deterministicID(spec.PatientName)}),
		mustNewElement(tag.StudyInstanceUID, []string{deterministicUID(spec.PatientName + "_study")}),
		mustNewElement(tag.InstanceNumber, []string{fmt.Sprintf("%d", index)}),
		mustNewElement(tag.SamplesPerPixel, []int{1}),
		mustNewElement(tag.PhotometricInterpretation, []string{"MONOCHROME2"}),
		mustNewElement(tag.Rows, []int{frameHeight}),
		mustNewElement(tag.Columns, []int{frameWidth}),
		mustNewElement(tag.BitsAllocated, []int{8}),
		mustNewElement(tag.BitsStored, []int{8}),
		mustNewElement(tag.HighBit, []int{7}),
		mustNewElement(tag.PixelRepresentation, []int{0}),
		mustNewElement(tag.PixelData, dicom.PixelDataInfo{
			Frames: []*frame.Frame{{Encapsulated: false, NativeData: nativeFrame}},
		}),
	}
	if spec.SeriesUID != "" {
		elements = append(elements, mustNewElement(tag.SeriesInstanceUID, []string{spec.SeriesUID}))
	}
	if spec.SeriesNumber != "" {
		elements = append(elements, mustNewElement(tag.SeriesNumber, []string{spec.SeriesNumber}))
	}
	if spec.Description != "" {
		elements = append(elements, mustNewElement(tag.SeriesDescription, []string{spec.Description}))
	}

	sort.Slice(elements, func(i, j int) bool {
		if elements[i].Tag.Group != elements[j].Tag.Group {
			return elements[i].Tag.Group < elements[j].Tag.Group
		}
		return elements[i].Tag.Element < elements[j].Tag.Element
	})

	return writeDatasetToFile(path, dicom.Dataset{Elements: elements})
}

// writeDatasetToFile writes a DICOM dataset to a file
func writeDatasetToFile(filename string, ds dicom.Dataset, opts ...dicom.WriteOption) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	return dicom.Write(f, ds, opts...)
}

// drawTextOnFrame8 stamps text in white at the top-left corner of a uint8 frame
func drawTextOnFrame8(nativeFrame *frame.NativeFrame[uint8], width, height int, text string) {
	img := image.NewGray(image.Rect(0, 0, width, height))
	copy(img.Pix, nativeFrame.RawData)

	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.Gray{Y: 255}),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(1), Y: fixed.I(13)}, // Baseline of the first text line
	}
	drawer.DrawString(text)

	copy(nativeFrame.RawData, img.Pix)
}

func mustNewElement(t tag.Tag, value any) *dicom.Element {
	elem, err := dicom.NewElement(t, value)
	if err != nil {
		panic(fmt.Sprintf("failed to create element %v: %v", t, err))
	}
	return elem
}

// deterministicUID derives a 2.25 UID from a seed string
func deterministicUID(seed string) string {
	h := fnv.New64a()
	_, _ = h.Write([]byte(seed))
	return fmt.Sprintf("2.25.%d", h.Sum64())
}

func deterministicID(seed string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(seed))
	return fmt.Sprintf("PID%08d", h.Sum32()%100000000)
}
