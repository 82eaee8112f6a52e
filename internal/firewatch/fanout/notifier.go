package fanout

import (
	"bytes"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"mime/multipart"
	"net"
	"net/smtp"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"fire-watch/internal/firewatch/model"
)

// Notifier 运行结束后的邮件汇报：正文是统计摘要，附件是两个 sink 文件。
// 发送失败只记日志，不回滚已落盘的数据，也不影响上传步骤。
type Notifier struct {
	Log        *zap.Logger
	Host       string
	Port       int
	Username   string
	Password   string
	From       string
	Recipients []string

	// DialTimeout SMTP 连接超时，零值用 30s
	DialTimeout time.Duration
}

// Send 组装 multipart 邮件并经 STARTTLS 发出
func (n *Notifier) Send(report *model.RunReport) error {
	if n.Username == "" || n.Password == "" {
		return fmt.Errorf("notifier: email credentials not configured")
	}
	if len(n.Recipients) == 0 {
		return fmt.Errorf("notifier: no recipients configured")
	}

	msg, err := n.buildMessage(report)
	if err != nil {
		return err
	}
	if err := n.sendSMTP(msg); err != nil {
		return err
	}
	n.Log.Info("Notification email sent",
		zap.Int("recipients", len(n.Recipients)),
		zap.Int("persisted", report.PersistedCount),
	)
	return nil
}

func (n *Notifier) buildMessage(report *model.RunReport) ([]byte, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fmt.Fprintf(&buf, "From: %s\r\n", n.From)
	fmt.Fprintf(&buf, "To: %s\r\n", strings.Join(n.Recipients, ", "))
	fmt.Fprintf(&buf, "Subject: Fire Incident Verification Results - %s\r\n",
		report.FinishedAt.Format("2006-01-02 15:04"))
	fmt.Fprintf(&buf, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%q\r\n\r\n", w.Boundary())

	body := fmt.Sprintf(
		"Fire Incident Verification Complete!\r\n\r\n"+
			"Summary:\r\n"+
			"- Total verified fire incidents: %d\r\n"+
			"- Candidates processed: %d\r\n"+
			"- Verification completed: %s\r\n\r\n"+
			"Files attached:\r\n"+
			"1. Excel file with detailed results\r\n"+
			"2. JSON file with raw data\r\n",
		report.PersistedCount,
		report.CandidateCount,
		report.FinishedAt.Format("2006-01-02 15:04:05"),
	)
	textPart, err := w.CreatePart(textproto.MIMEHeader{
		"Content-Type": {"text/plain; charset=utf-8"},
	})
	if err != nil {
		return nil, err
	}
	if _, err := textPart.Write([]byte(body)); err != nil {
		return nil, err
	}

	for _, path := range []string{report.SpreadsheetPath, report.LedgerPath} {
		if path == "" {
			continue
		}
		if err := attachFile(w, path); err != nil {
			// 附件缺失不挡整封邮件
			n.Log.Warn("Skipping attachment", zap.String("path", path), zap.Error(err))
		}
	}

	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func attachFile(w *multipart.Writer, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	name := filepath.Base(path)
	part, err := w.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {"application/octet-stream"},
		"Content-Transfer-Encoding": {"base64"},
		"Content-Disposition":       {fmt.Sprintf("attachment; filename=%q", name)},
	})
	if err != nil {
		return err
	}
	encoded := base64.StdEncoding.EncodeToString(data)
	// 76 字符一行
	for len(encoded) > 0 {
		n := 76
		if len(encoded) < n {
			n = len(encoded)
		}
		if _, err := part.Write([]byte(encoded[:n] + "\r\n")); err != nil {
			return err
		}
		encoded = encoded[n:]
	}
	return nil
}

func (n *Notifier) sendSMTP(msg []byte) error {
	timeout := n.DialTimeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	addr := fmt.Sprintf("%s:%d", n.Host, n.Port)

	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return fmt.Errorf("notifier: dial %s: %w", addr, err)
	}
	client, err := smtp.NewClient(conn, n.Host)
	if err != nil {
		_ = conn.Close()
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: n.Host}); err != nil {
			return err
		}
	}
	if err := client.Auth(smtp.PlainAuth("", n.Username, n.Password, n.Host)); err != nil {
		return err
	}
	if err := client.Mail(n.From); err != nil {
		return err
	}
	for _, rcpt := range n.Recipients {
		if err := client.Rcpt(rcpt); err != nil {
			return err
		}
	}
	wc, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := wc.Write(msg); err != nil {
		_ = wc.Close()
		return err
	}
	if err := wc.Close(); err != nil {
		return err
	}
	return client.Quit()
}
