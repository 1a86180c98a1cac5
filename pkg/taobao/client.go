package taobao

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const DefaultBaseURL = "https://eco.taobao.com/router/rest"

const (
	defaultAdzoneID   = "100812600397"
	defaultMaterialID = "13366"
)

// Client wraps the Taobao affiliate REST router. Every call is a signed
// form-encoded POST; responses arrive inside a per-method envelope.
type Client struct {
	BaseURL    string
	AppKey     string
	AppSecret  string
	AdzoneID   string
	MaterialID string
	HTTPClient *http.Client
}

func NewClient(appKey, appSecret, adzoneID, materialID string) *Client {
	if adzoneID == "" {
		adzoneID = defaultAdzoneID
	}
	if materialID == "" {
		materialID = defaultMaterialID
	}
	return &Client{
		BaseURL:    DefaultBaseURL,
		AppKey:     appKey,
		AppSecret:  appSecret,
		AdzoneID:   adzoneID,
		MaterialID: materialID,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// --- Wire structs (internal to this package) ---

type errorEnvelope struct {
	Code    json.Number `json:"code"`
	Msg     string      `json:"msg"`
	SubCode string      `json:"sub_code"`
	SubMsg  string      `json:"sub_msg"`
}

type materialItem struct {
	ItemID        json.Number `json:"item_id"`
	ItemBasicInfo struct {
		Title                string      `json:"title"`
		SubTitle             string      `json:"sub_title"`
		PictURL              string      `json:"pict_url"`
		LevelOneCategoryName string      `json:"level_one_category_name"`
		LevelOneCategoryID   json.Number `json:"level_one_category_id"`
		CategoryID           json.Number `json:"category_id"`
		ShopTitle            string      `json:"shop_title"`
		SellerID             json.Number `json:"seller_id"`
		UserType             json.Number `json:"user_type"`
		Volume               json.Number `json:"volume"`
	} `json:"item_basic_info"`
	PricePromotionInfo struct {
		ZkFinalPrice string `json:"zk_final_price"`
		ReservePrice string `json:"reserve_price"`
	} `json:"price_promotion_info"`
	PublishInfo struct {
		ClickURL       string `json:"click_url"`
		CouponShareURL string `json:"coupon_share_url"`
		IncomeRate     string `json:"income_rate"`
	} `json:"publish_info"`
}

type detailItem struct {
	NumIID        json.Number `json:"num_iid"`
	Title         string      `json:"title"`
	Price         string      `json:"price"`
	OriginalPrice string      `json:"original_price"`
	Desc          string      `json:"desc"`
	PicURL        string      `json:"pic_url"`
	DetailURL     string      `json:"detail_url"`
	CategoryName  string      `json:"category_name"`
	Nick          string      `json:"nick"`
	Volume        json.Number `json:"volume"`
}

// call executes one signed request and returns the per-method response
// envelope body. Failures are classified into the package error taxonomy.
func (c *Client) call(ctx context.Context, method string, params map[string]string) (json.RawMessage, error) {
	all := map[string]string{
		"method":      method,
		"app_key":     c.AppKey,
		"timestamp":   strconv.FormatInt(time.Now().Unix(), 10),
		"format":      "json",
		"v":           "2.0",
		"sign_method": "md5",
	}
	for k, v := range params {
		all[k] = v
	}
	all["sign"] = Sign(all, c.AppSecret)

	form := url.Values{}
	for k, v := range all {
		form.Set(k, v)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, ErrConnection
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &UpstreamError{Code: strconv.Itoa(resp.StatusCode), Message: "unexpected http status"}
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, ErrMalformed
	}

	if raw, ok := envelope["error_response"]; ok {
		var e errorEnvelope
		if err := json.Unmarshal(raw, &e); err != nil {
			return nil, ErrMalformed
		}
		log.Printf("[WARN] taobao api error: method=%s code=%s msg=%s sub=%s", method, e.Code.String(), e.Msg, e.SubMsg)
		return nil, &UpstreamError{Code: e.Code.String(), Message: e.Msg}
	}

	responseKey := strings.ReplaceAll(strings.TrimPrefix(method, "taobao."), ".", "_") + "_response"
	raw, ok := envelope[responseKey]
	if !ok {
		log.Printf("[WARN] taobao api response missing key %s for method %s", responseKey, method)
		return nil, ErrMalformed
	}

	return raw, nil
}

func classifyTransportError(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrTimeout
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	return ErrConnection
}

// SearchByKeyword searches the affiliate material catalog. It never
// returns fabricated records: on any upstream failure the result slice
// is empty and the typed failure is returned alongside it.
func (c *Client) SearchByKeyword(ctx context.Context, query string, page, pageSize int) ([]Product, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > 100 {
		pageSize = 100
	}

	params := map[string]string{
		"q":           query,
		"page_no":     strconv.Itoa(page),
		"page_size":   strconv.Itoa(pageSize),
		"adzone_id":   c.AdzoneID,
		"material_id": c.MaterialID,
		"has_coupon":  "false",
		"platform":    "1",
		"sort":        "total_sales_des",
	}

	raw, err := c.call(ctx, "taobao.tbk.dg.material.optional.upgrade", params)
	if err != nil {
		return []Product{}, err
	}

	var body struct {
		ResultList struct {
			MapData []materialItem `json:"map_data"`
		} `json:"result_list"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return []Product{}, ErrMalformed
	}

	products := make([]Product, 0, len(body.ResultList.MapData))
	for _, item := range body.ResultList.MapData {
		products = append(products, Product{
			ItemID:        item.ItemID.String(),
			Title:         item.ItemBasicInfo.Title,
			Price:         item.PricePromotionInfo.ZkFinalPrice,
			OriginalPrice: item.PricePromotionInfo.ReservePrice,
			Description:   item.ItemBasicInfo.SubTitle,
			ImageURL:      strings.Replace(item.ItemBasicInfo.PictURL, "_300x300.jpg", "_400x400.jpg", 1),
			DetailURL:     item.PublishInfo.ClickURL,
			Category:      item.ItemBasicInfo.LevelOneCategoryName,
			ShopName:      item.ItemBasicInfo.ShopTitle,
			Sales:         item.ItemBasicInfo.Volume.String(),
			Metadata: map[string]interface{}{
				"category_id":           item.ItemBasicInfo.CategoryID.String(),
				"level_one_category_id": item.ItemBasicInfo.LevelOneCategoryID.String(),
				"seller_id":             item.ItemBasicInfo.SellerID.String(),
				"coupon_share_url":      item.PublishInfo.CouponShareURL,
				"income_rate":           item.PublishInfo.IncomeRate,
			},
		})
	}

	return products, nil
}

// SearchByImage validates the base64 payload and queries the image
// search integration. There is no official affiliate endpoint for this
// yet, so a valid payload currently yields an empty result set.
func (c *Client) SearchByImage(ctx context.Context, imageBase64 string) ([]Product, error) {
	data := imageBase64
	if idx := strings.Index(data, ","); idx >= 0 {
		// Strip an optional data-URI prefix ("data:image/png;base64,...").
		data = data[idx+1:]
	}
	if _, err := base64.StdEncoding.DecodeString(data); err != nil {
		return nil, ErrInvalidImageData
	}

	log.Printf("[INFO] taobao image search requested (payload %d chars), integration unavailable", len(data))
	return []Product{}, nil
}

// GetDetail looks up a single listing by item id.
func (c *Client) GetDetail(ctx context.Context, itemID string) (*Product, error) {
	params := map[string]string{
		"num_iid": itemID,
		"fields":  "num_iid,title,price,original_price,desc,pic_url,detail_url,category_name,nick,volume",
	}

	raw, err := c.call(ctx, "taobao.item.get", params)
	if err != nil {
		var ue *UpstreamError
		if errors.As(err, &ue) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var body struct {
		Item *detailItem `json:"item"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, ErrMalformed
	}
	if body.Item == nil || body.Item.NumIID.String() == "" {
		return nil, ErrNotFound
	}

	item := body.Item
	return &Product{
		ItemID:        item.NumIID.String(),
		Title:         item.Title,
		Price:         item.Price,
		OriginalPrice: item.OriginalPrice,
		Description:   item.Desc,
		ImageURL:      item.PicURL,
		DetailURL:     item.DetailURL,
		Category:      item.CategoryName,
		ShopName:      item.Nick,
		Sales:         item.Volume.String(),
		Metadata:      map[string]interface{}{},
	}, nil
}

// GetOrderInfo looks up one order.
func (c *Client) GetOrderInfo(ctx context.Context, orderID string) (*OrderInfo, error) {
	raw, err := c.call(ctx, "taobao.trade.fullinfo.get", map[string]string{
		"tid":    orderID,
		"fields": "tid,status,created,pay_time,total_fee,payment,discount_fee,buyer_nick,orders,receiver_address",
	})
	if err != nil {
		var ue *UpstreamError
		if errors.As(err, &ue) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var body struct {
		Trade *struct {
			Tid         json.Number `json:"tid"`
			Status      string      `json:"status"`
			Created     string      `json:"created"`
			PayTime     string      `json:"pay_time"`
			TotalFee    string      `json:"total_fee"`
			Payment     string      `json:"payment"`
			DiscountFee string      `json:"discount_fee"`
			BuyerNick   string      `json:"buyer_nick"`
			Orders      struct {
				Order []struct {
					NumIID json.Number `json:"num_iid"`
					Title  string      `json:"title"`
					Price  string      `json:"price"`
					Num    int         `json:"num"`
				} `json:"order"`
			} `json:"orders"`
			ReceiverAddress string `json:"receiver_address"`
		} `json:"trade"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, ErrMalformed
	}
	if body.Trade == nil {
		return nil, ErrNotFound
	}

	trade := body.Trade
	info := &OrderInfo{
		OrderID:         trade.Tid.String(),
		Status:          trade.Status,
		CreateTime:      trade.Created,
		PayTime:         trade.PayTime,
		TotalAmount:     trade.TotalFee,
		ActualPayment:   trade.Payment,
		Discount:        trade.DiscountFee,
		Buyer:           trade.BuyerNick,
		ShippingAddress: trade.ReceiverAddress,
	}
	for _, o := range trade.Orders.Order {
		info.Items = append(info.Items, OrderItem{
			ItemID:   o.NumIID.String(),
			Title:    o.Title,
			Price:    o.Price,
			Quantity: o.Num,
		})
	}

	return info, nil
}

// GetLogisticsInfo looks up the shipping trace for one order.
func (c *Client) GetLogisticsInfo(ctx context.Context, orderID string) (*LogisticsInfo, error) {
	raw, err := c.call(ctx, "taobao.logistics.trace.search", map[string]string{
		"tid":    orderID,
		"seller": "",
	})
	if err != nil {
		var ue *UpstreamError
		if errors.As(err, &ue) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var body struct {
		Tid         json.Number `json:"tid"`
		CompanyName string      `json:"company_name"`
		OutSid      string      `json:"out_sid"`
		Status      string      `json:"status"`
		TraceList   struct {
			TransitStepInfo []struct {
				StatusTime string `json:"status_time"`
				StatusDesc string `json:"status_desc"`
			} `json:"transit_step_info"`
		} `json:"trace_list"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, ErrMalformed
	}
	if body.Tid.String() == "" && body.OutSid == "" {
		return nil, ErrNotFound
	}

	info := &LogisticsInfo{
		OrderID:          orderID,
		LogisticsCompany: body.CompanyName,
		TrackingNumber:   body.OutSid,
		Status:           body.Status,
	}
	for _, step := range body.TraceList.TransitStepInfo {
		info.Details = append(info.Details, LogisticsTrace{
			Time:        step.StatusTime,
			Description: step.StatusDesc,
		})
	}

	return info, nil
}
