package awsutil

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

// MockS3Client - mock S3 client for unit tests. Don't forget to call FinishTest() at the end of your test to check
// that all calls to S3 were made, and there were no unexpected calls!
type MockS3Client struct {
	mutex sync.Mutex

	s3iface.S3API

	// Expected requests
	ExpListObjectsV2Input []s3.ListObjectsV2Input
	ExpGetObjectInput     []s3.GetObjectInput
	ExpPutObjectInput     []s3.PutObjectInput
	ExpHeadObjectInput    []s3.HeadObjectInput

	// Responses replayed as each request comes in. A nil entry is returned as an error
	QueuedListObjectsV2Output []*s3.ListObjectsV2Output
	QueuedGetObjectOutput     []*s3.GetObjectOutput
	QueuedPutObjectOutput     []*s3.PutObjectOutput
	QueuedHeadObjectOutput    []*s3.HeadObjectOutput
}

// NOTE: This function MUST be called at the end of a unit test/example test. Use defer when declaring MockS3Client!
func (m *MockS3Client) FinishTest() error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	err := m.getFinishTestResult()

	// Print so example tests get this in their output
	if err != nil {
		fmt.Println(err)
	}

	return err
}

func (m *MockS3Client) getFinishTestResult() error {
	remaining := []struct {
		name string
		n    int
	}{
		{"Test expected more ListObjectsV2 calls", len(m.ExpListObjectsV2Input)},
		{"Test expected more GetObject calls", len(m.ExpGetObjectInput)},
		{"Test expected more PutObject calls", len(m.ExpPutObjectInput)},
		{"Test expected more HeadObject calls", len(m.ExpHeadObjectInput)},
		{"Remaining output ListObjectsV2", len(m.QueuedListObjectsV2Output)},
		{"Remaining output GetObject", len(m.QueuedGetObjectOutput)},
		{"Remaining output PutObject", len(m.QueuedPutObjectOutput)},
		{"Remaining output HeadObject", len(m.QueuedHeadObjectOutput)},
	}

	for _, r := range remaining {
		if r.n > 0 {
			return errors.New(r.name)
		}
	}
	return nil
}

const ErrNoMoreInputsExpected = "No more inputs expected for "
const ErrWrongInput = "Incorrect input in "
const ErrNothingToReturn = "Nothing to return from "
const ErrReturningError = "Returning error from "

// stringer is what every aws-sdk input struct implements
type stringer interface {
	String() string
}

// popExpected checks the input against the next expected one and returns the next queued output
func popExpected[I stringer, O any](name string, input I, expList *[]I, outputs *[]*O) (*O, error) {
	if len(*expList) <= 0 {
		return nil, errors.New(ErrNoMoreInputsExpected + name)
	}

	expStr := (*expList)[0].String()
	*expList = (*expList)[1:]

	inpStr := input.String()
	if expStr != inpStr {
		return nil, fmt.Errorf("%v expected: \"%v\" S3 recvd: \"%v\"", ErrWrongInput+name, expStr, inpStr)
	}

	if len(*outputs) <= 0 {
		return nil, errors.New(ErrNothingToReturn + name)
	}

	result := (*outputs)[0]
	*outputs = (*outputs)[1:]

	return result, nil
}

func (m *MockS3Client) ListObjectsV2(input *s3.ListObjectsV2Input) (*s3.ListObjectsV2Output, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	name := "ListObjectsV2"
	result, err := popExpected(name, *input, &m.ExpListObjectsV2Input, &m.QueuedListObjectsV2Output)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, errors.New(ErrReturningError + name)
	}
	return result, nil
}

func (m *MockS3Client) GetObject(input *s3.GetObjectInput) (*s3.GetObjectOutput, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	name := "GetObject"
	result, err := popExpected(name, *input, &m.ExpGetObjectInput, &m.QueuedGetObjectOutput)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, awserr.New(s3.ErrCodeNoSuchKey, ErrReturningError+name, nil)
	}
	return result, nil
}

func (m *MockS3Client) HeadObject(input *s3.HeadObjectInput) (*s3.HeadObjectOutput, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	name := "HeadObject"
	result, err := popExpected(name, *input, &m.ExpHeadObjectInput, &m.QueuedHeadObjectOutput)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, awserr.New("NotFound", ErrReturningError+name, nil)
	}
	return result, nil
}

// PutObject compares bucket, key and body rather than String(), which doesn't print the body
func (m *MockS3Client) PutObject(input *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	name := "PutObject"
	if len(m.ExpPutObjectInput) <= 0 {
		return nil, errors.New(ErrNoMoreInputsExpected + name)
	}

	expItem := m.ExpPutObjectInput[0]
	m.ExpPutObjectInput = m.ExpPutObjectInput[1:]

	if *input.Bucket != *expItem.Bucket {
		return nil, fmt.Errorf("%v%v - bucket expected: \"%v\" S3 recvd: \"%v\"", ErrWrongInput, name, *expItem.Bucket, *input.Bucket)
	}
	if *input.Key != *expItem.Key {
		return nil, fmt.Errorf("%v%v - key expected: \"%v\" S3 recvd: \"%v\"", ErrWrongInput, name, *expItem.Key, *input.Key)
	}
	if expItem.Body != nil {
		expBody := getAsStr(expItem.Body)
		inpBody := getAsStr(input.Body)
		if expBody != inpBody {
			return nil, fmt.Errorf("%v%v - body expected: \"%v\" S3 recvd: \"%v\"", ErrWrongInput, name, expBody, inpBody)
		}
	}

	if len(m.QueuedPutObjectOutput) <= 0 {
		return nil, errors.New(ErrNothingToReturn + name)
	}

	result := m.QueuedPutObjectOutput[0]
	m.QueuedPutObjectOutput = m.QueuedPutObjectOutput[1:]

	if result == nil {
		return nil, errors.New(ErrReturningError + name)
	}
	return result, nil
}

func getAsStr(r io.Reader) string {
	data, err := io.ReadAll(r)
	if err != nil {
		return "ERROR GETTING DATA"
	}
	return string(data)
}
