package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/malusev998/currency-quotes"
)

type (
	MockUploader struct {
		mock.Mock
		body []byte
	}

	MockMessageWriter struct {
		mock.Mock
	}
)

func (m *MockUploader) Upload(ctx context.Context, name string, content io.Reader) error {
	m.body, _ = io.ReadAll(content)
	args := m.Called(ctx, name)

	return args.Error(0)
}

func (m *MockMessageWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	args := m.Called(ctx, msgs)

	return args.Error(0)
}

func (m *MockMessageWriter) Close() error {
	return m.Called().Error(0)
}

func testDataset() currency.Dataset {
	return currency.Dataset{Tables: []currency.Table{
		{
			Date: time.Date(2024, time.July, 4, 0, 0, 0, 0, time.UTC),
			Quotes: []currency.Quote{
				{Date: "04/07/2024", Code: "978", Type: currency.TypeB, Name: "EUR", BuyRate: 5.4, SellRate: 5.5, BuyParity: 1.08, SellParity: 1.09, USDValue: 5.832, BRLValue: 29.7},
				{Date: "04/07/2024", Code: "61", Type: currency.TypeA, Name: "AFN", BuyRate: 0.07, SellRate: 0.08, BuyParity: 70, SellParity: 71, USDValue: 0.001, BRLValue: 0.0056},
				{Date: "04/07/2024", Code: "220", Type: currency.TypeA, Name: "USD", BuyRate: 5, SellRate: 5.1, BuyParity: 1, SellParity: 1, USDValue: 5, BRLValue: 25.5},
			},
		},
		{
			Date: time.Date(2024, time.July, 3, 0, 0, 0, 0, time.UTC),
			Quotes: []currency.Quote{
				{Date: "03/07/2024", Code: "220", Type: currency.TypeA, Name: "USD", BuyRate: 5.2, SellRate: 5.3, BuyParity: 1, SellParity: 1, USDValue: 5.2, BRLValue: 27.56},
			},
		},
	}}
}

func TestEncodeCSV(t *testing.T) {
	t.Parallel()
	asserts := require.New(t)

	var buf bytes.Buffer
	asserts.Nil(EncodeCSV(&buf, testDataset()))

	data := buf.Bytes()
	asserts.True(bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}))

	records, err := csv.NewReader(bytes.NewReader(data[3:])).ReadAll()
	asserts.Nil(err)
	asserts.Len(records, 5)
	asserts.Equal(currency.Columns, records[0])
	asserts.Equal([]string{"04/07/2024", "978", "B", "EUR", "5.4", "5.5", "1.08", "1.09", "5.832", "29.7"}, records[1])
	asserts.Equal("03/07/2024", records[4][0])
	for _, r := range records {
		asserts.Len(r, len(currency.Columns))
	}
}

func TestWorkbook(t *testing.T) {
	t.Parallel()
	asserts := require.New(t)

	file, err := Workbook(testDataset())
	asserts.Nil(err)
	asserts.Len(file.Sheets, 2)
	asserts.Equal("20240704", file.Sheets[0].Name)
	asserts.Equal("20240703", file.Sheets[1].Name)

	sheet := file.Sheets[0]
	asserts.Len(sheet.Rows, 4)

	for i, column := range currency.Columns {
		cell := sheet.Rows[0].Cells[i]
		asserts.Equal(column, cell.String())
		asserts.True(cell.GetStyle().Font.Bold)
		asserts.Equal(headerColor, cell.GetStyle().Fill.FgColor)
	}

	asserts.Equal("61", sheet.Rows[1].Cells[1].String())
	asserts.Equal("220", sheet.Rows[2].Cells[1].String())
	asserts.Equal("978", sheet.Rows[3].Cells[1].String())

	asserts.Equal(evenRowColor, sheet.Rows[1].Cells[0].GetStyle().Fill.FgColor)
	asserts.Equal(oddRowColor, sheet.Rows[2].Cells[0].GetStyle().Fill.FgColor)
	asserts.Equal(evenRowColor, sheet.Rows[3].Cells[9].GetStyle().Fill.FgColor)

	value, err := sheet.Rows[3].Cells[9].Float()
	asserts.Nil(err)
	asserts.InDelta(29.7, value, 1e-9)
}

func TestSheetName(t *testing.T) {
	t.Parallel()

	table := currency.Table{Date: time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC)}
	assert.Equal(t, "20240102", SheetName(table))
}

func TestSortByCode_MixedCodes(t *testing.T) {
	t.Parallel()
	asserts := require.New(t)

	var quotes []currency.Quote
	for _, code := range []string{"XAU", "978", "220", "ABC", "61", "1000"} {
		quotes = append(quotes, currency.Quote{Code: code})
	}

	var codes []string
	for _, q := range sortByCode(quotes) {
		codes = append(codes, q.Code)
	}

	asserts.Equal([]string{"61", "220", "978", "1000", "ABC", "XAU"}, codes)
	asserts.Equal("XAU", quotes[0].Code)
}

func TestDriveQuery(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "name = 'cotacoes_diarias.csv' and trashed = false",
		driveQuery("cotacoes_diarias.csv", ""))
	assert.Equal(t, `name = 'it\'s \\ here.csv' and trashed = false and 'folder\'1' in parents`,
		driveQuery(`it's \ here.csv`, "folder'1"))
}

func TestSpreadsheetSink(t *testing.T) {
	t.Parallel()
	asserts := require.New(t)
	path := filepath.Join(t.TempDir(), "quotes.xlsx")
	sink := NewSpreadsheetSink(path)

	asserts.Equal("xlsx", sink.Name())
	asserts.Nil(sink.Write(context.Background(), testDataset()))

	file, err := xlsx.OpenFile(path)
	asserts.Nil(err)
	asserts.Contains(file.Sheet, "20240704")
	asserts.Contains(file.Sheet, "20240703")
	asserts.Equal("USD", file.Sheet["20240703"].Rows[1].Cells[3].String())

	asserts.Equal(DefaultSpreadsheetPath, NewSpreadsheetSink("").path)
}

func TestDriveSink(t *testing.T) {
	t.Parallel()

	t.Run("WritesTempFileAndUploads", func(t *testing.T) {
		asserts := require.New(t)
		fs := afero.NewMemMapFs()
		uploader := &MockUploader{}
		uploader.On("Upload", mock.Anything, "cotacoes_diarias.csv").Return(nil)

		sink := NewDriveSink(uploader, fs, "", "")
		asserts.Equal("drive", sink.Name())
		asserts.Nil(sink.Write(context.Background(), testDataset()))

		onDisk, err := afero.ReadFile(fs, DefaultDriveTempPath)
		asserts.Nil(err)
		asserts.Equal(onDisk, uploader.body)
		asserts.True(bytes.HasPrefix(onDisk, []byte{0xEF, 0xBB, 0xBF}))
		uploader.AssertExpectations(t)
	})

	t.Run("UploadFailure", func(t *testing.T) {
		asserts := require.New(t)
		uploader := &MockUploader{}
		quota := errors.New("quota exceeded")
		uploader.On("Upload", mock.Anything, "quotes.csv").Return(quota)

		sink := NewDriveSink(uploader, afero.NewMemMapFs(), "/tmp/quotes.csv", "quotes.csv")
		err := sink.Write(context.Background(), testDataset())

		asserts.ErrorIs(err, quota)
	})
}

func TestKafkaSink(t *testing.T) {
	t.Parallel()

	t.Run("OneMessagePerTable", func(t *testing.T) {
		asserts := require.New(t)
		writer := &MockMessageWriter{}
		var sent []kafka.Message
		writer.On("WriteMessages", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) { sent = args.Get(1).([]kafka.Message) }).
			Return(nil)

		sink := NewKafkaSink(writer)
		asserts.Equal("kafka", sink.Name())
		asserts.Nil(sink.Write(context.Background(), testDataset()))

		asserts.Len(sent, 2)
		asserts.Equal([]byte("20240704"), sent[0].Key)
		asserts.Equal([]byte("20240703"), sent[1].Key)

		var message TableMessage
		asserts.Nil(json.Unmarshal(sent[0].Value, &message))
		asserts.Equal("20240704", message.Date)
		asserts.Len(message.Quotes, 3)
		asserts.Equal("EUR", message.Quotes[0].Name)
	})

	t.Run("EmptyDatasetSendsNothing", func(t *testing.T) {
		asserts := require.New(t)
		writer := &MockMessageWriter{}
		sink := NewKafkaSink(writer)

		asserts.Nil(sink.Write(context.Background(), currency.Dataset{}))
		writer.AssertNotCalled(t, "WriteMessages", mock.Anything, mock.Anything)
	})

	t.Run("WriteFailure", func(t *testing.T) {
		asserts := require.New(t)
		writer := &MockMessageWriter{}
		writer.On("WriteMessages", mock.Anything, mock.Anything).Return(errors.New("leader not available"))
		writer.On("Close").Return(nil)

		sink := NewKafkaSink(writer)

		asserts.Error(sink.Write(context.Background(), testDataset()))
		asserts.Nil(sink.Close())
	})
}
